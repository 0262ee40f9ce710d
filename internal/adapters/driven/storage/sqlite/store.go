package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
)

// Store is the SQLite-backed record store: sync cursors, item records and
// the last-applied resource hash cache.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.RecordStore = (*Store)(nil)

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.corpus/data/records.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".corpus", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "records.db")

	// WAL mode for better concurrency between readers and the writer.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Cursors ====================

// GetCursor returns the cursor for a source.
func (s *Store) GetCursor(ctx context.Context, sourceID string) (*domain.SourceCursor, error) {
	var cursor domain.SourceCursor
	var lastSync string

	row := s.db.QueryRowContext(ctx,
		"SELECT source_id, cursor, last_sync FROM sync_cursors WHERE source_id = ?", sourceID)
	if err := row.Scan(&cursor.SourceID, &cursor.Cursor, &lastSync); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying cursor: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, lastSync)
	if err != nil {
		return nil, fmt.Errorf("parsing last sync time: %w", err)
	}
	cursor.LastSync = parsed
	return &cursor, nil
}

// SaveCursor stores or replaces a source's cursor.
func (s *Store) SaveCursor(ctx context.Context, cursor domain.SourceCursor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_cursors (source_id, cursor, last_sync)
		VALUES (?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			cursor = excluded.cursor,
			last_sync = excluded.last_sync
	`, cursor.SourceID, cursor.Cursor, cursor.LastSync.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving cursor: %w", err)
	}
	return nil
}

// ResetCursor removes a source's cursor and all of its item records in
// one transaction, forcing a full re-scan on the next run.
func (s *Store) ResetCursor(ctx context.Context, sourceID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sync_cursors WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("deleting cursor: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM item_records WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("deleting item records: %w", err)
	}
	return tx.Commit()
}

// ==================== Item records ====================

// ListItems returns all item records for a source keyed by item ID.
func (s *Store) ListItems(ctx context.Context, sourceID string) (map[string]domain.ItemRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, item_id, fingerprint, staged_hash, path, staged_at
		FROM item_records WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying item records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]domain.ItemRecord)
	for rows.Next() {
		var record domain.ItemRecord
		var stagedAt string
		if err := rows.Scan(&record.SourceID, &record.ItemID, &record.Fingerprint,
			&record.StagedHash, &record.Path, &stagedAt); err != nil {
			return nil, fmt.Errorf("scanning item record: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, stagedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing staged time: %w", err)
		}
		record.StagedAt = parsed
		records[record.ItemID] = record
	}
	return records, rows.Err()
}

// SaveItem stores or replaces one item record.
func (s *Store) SaveItem(ctx context.Context, record domain.ItemRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO item_records (source_id, item_id, fingerprint, staged_hash, path, staged_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, item_id) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			staged_hash = excluded.staged_hash,
			path = excluded.path,
			staged_at = excluded.staged_at
	`, record.SourceID, record.ItemID, record.Fingerprint, record.StagedHash,
		record.Path, record.StagedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving item record: %w", err)
	}
	return nil
}

// DeleteItem removes one item record. Missing records are not an error.
func (s *Store) DeleteItem(ctx context.Context, sourceID, itemID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM item_records WHERE source_id = ? AND item_id = ?", sourceID, itemID)
	if err != nil {
		return fmt.Errorf("deleting item record: %w", err)
	}
	return nil
}

// ==================== Resource hashes ====================

// GetResourceHash returns the cached last-applied definition hash.
func (s *Store) GetResourceHash(ctx context.Context, prefix string, typ domain.ResourceType) (string, error) {
	var hash string
	row := s.db.QueryRowContext(ctx,
		"SELECT hash FROM resource_hashes WHERE prefix = ? AND resource_type = ?", prefix, string(typ))
	if err := row.Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("querying resource hash: %w", err)
	}
	return hash, nil
}

// SaveResourceHash caches a last-applied definition hash.
func (s *Store) SaveResourceHash(ctx context.Context, prefix string, typ domain.ResourceType, hash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resource_hashes (prefix, resource_type, hash, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(prefix, resource_type) DO UPDATE SET
			hash = excluded.hash,
			updated_at = excluded.updated_at
	`, prefix, string(typ), hash, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving resource hash: %w", err)
	}
	return nil
}

// DeleteResourceHash drops the cached hash for (prefix, type). Missing
// entries are not an error.
func (s *Store) DeleteResourceHash(ctx context.Context, prefix string, typ domain.ResourceType) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM resource_hashes WHERE prefix = ? AND resource_type = ?", prefix, string(typ))
	if err != nil {
		return fmt.Errorf("deleting resource hash: %w", err)
	}
	return nil
}
