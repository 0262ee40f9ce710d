// Package domain contains the core business entities for corpus-cli.
//
// The domain layer has no dependencies on other packages in this project
// and no knowledge of infrastructure. Entities here model the sync and
// indexing pipeline: cursors and item records for change tracking, staged
// objects for durable storage, vertical descriptors for the four-resource
// indexing pipeline, run reports for indexer executions, and category
// reports for corpus analysis.
package domain
