// Package driving defines the interfaces that expose core functionality
// to the outside world.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI adapter calls these interfaces; core services implement them.
//
//   - Syncer: One-shot source synchronisation into durable storage
//   - VerticalManager: Idempotent apply/teardown of pipeline resources
//   - IndexerMonitor: Indexer triggering and status normalisation
//   - Advisor: Corpus categorisation and vertical suggestions
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or service package
package driving
