// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ContentSource: Paginated, resumable listing and fetching of remote items
//   - ObjectStore: Durable storage for staged objects and sidecars
//   - ResourceClient: CRUD on the search service's pipeline resources
//   - IndexerClient: Indexer triggering and execution history
//   - DefinitionBuilder: Builds concrete resource definitions for a vertical
//   - RecordStore: Cursor, item-record and resource-hash persistence
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
