// Package memory provides in-memory implementations of the driven storage
// ports. Used for tests and as reference implementations of the port
// contracts.
package memory

import (
	"context"
	"sync"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	cursors map[string]domain.SourceCursor
	items   map[string]map[string]domain.ItemRecord
	hashes  map[string]string
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		cursors: make(map[string]domain.SourceCursor),
		items:   make(map[string]map[string]domain.ItemRecord),
		hashes:  make(map[string]string),
	}
}

// GetCursor retrieves the cursor for a source.
func (s *RecordStore) GetCursor(_ context.Context, sourceID string) (*domain.SourceCursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cursor, ok := s.cursors[sourceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cursor, nil
}

// SaveCursor stores or replaces a source's cursor.
func (s *RecordStore) SaveCursor(_ context.Context, cursor domain.SourceCursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[cursor.SourceID] = cursor
	return nil
}

// ResetCursor removes a source's cursor and item records.
func (s *RecordStore) ResetCursor(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cursors, sourceID)
	delete(s.items, sourceID)
	return nil
}

// ListItems returns all item records for a source keyed by item ID.
func (s *RecordStore) ListItems(_ context.Context, sourceID string) (map[string]domain.ItemRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make(map[string]domain.ItemRecord, len(s.items[sourceID]))
	for id, rec := range s.items[sourceID] {
		records[id] = rec
	}
	return records, nil
}

// SaveItem stores or replaces one item record.
func (s *RecordStore) SaveItem(_ context.Context, record domain.ItemRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items[record.SourceID] == nil {
		s.items[record.SourceID] = make(map[string]domain.ItemRecord)
	}
	s.items[record.SourceID][record.ItemID] = record
	return nil
}

// DeleteItem removes one item record.
func (s *RecordStore) DeleteItem(_ context.Context, sourceID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items[sourceID], itemID)
	return nil
}

// GetResourceHash returns the cached definition hash for (prefix, type).
func (s *RecordStore) GetResourceHash(_ context.Context, prefix string, typ domain.ResourceType) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.hashes[prefix+"/"+string(typ)]
	if !ok {
		return "", domain.ErrNotFound
	}
	return hash, nil
}

// SaveResourceHash caches a definition hash for (prefix, type).
func (s *RecordStore) SaveResourceHash(_ context.Context, prefix string, typ domain.ResourceType, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[prefix+"/"+string(typ)] = hash
	return nil
}

// DeleteResourceHash drops the cached hash for (prefix, type).
func (s *RecordStore) DeleteResourceHash(_ context.Context, prefix string, typ domain.ResourceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, prefix+"/"+string(typ))
	return nil
}
