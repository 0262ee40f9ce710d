// Package azure implements the search service ports against an Azure AI
// Search style REST API: PUT-based resource upserts, indexer runs and
// execution history, plus the definition builder that owns the service
// schema for both pipeline variants.
package azure
