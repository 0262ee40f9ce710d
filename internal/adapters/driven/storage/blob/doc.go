// Package blob implements the object store port against an Azure Blob
// style REST API: block blob puts with metadata headers, flat listing and
// idempotent deletes.
package blob
