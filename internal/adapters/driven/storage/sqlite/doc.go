// Package sqlite provides the SQLite-backed record store: sync cursors,
// tracked item records and the last-applied resource hash cache survive
// across invocations in a single local database file.
package sqlite
