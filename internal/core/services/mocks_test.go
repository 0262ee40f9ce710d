package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
)

// --- Mock implementations shared across the service tests ---

// mockSource implements driven.ContentSource over scripted pages keyed by
// cursor. The zero cursor maps to the first page.
type mockSource struct {
	mu sync.Mutex

	id      string
	delta   bool
	pages   map[string]*driven.Page
	pageErr map[string]error

	content map[string][]byte
	attrs   map[string]driven.Attributes

	fetchErr     map[string]error
	fetchErrN    map[string]int // fail this many calls, then succeed
	fetchCalls   map[string]int
	totalFetches int
}

func newMockSource(id string) *mockSource {
	return &mockSource{
		id:         id,
		pages:      make(map[string]*driven.Page),
		pageErr:    make(map[string]error),
		content:    make(map[string][]byte),
		attrs:      make(map[string]driven.Attributes),
		fetchErr:   make(map[string]error),
		fetchErrN:  make(map[string]int),
		fetchCalls: make(map[string]int),
	}
}

func (m *mockSource) SourceID() string { return m.id }

func (m *mockSource) Capabilities() driven.SourceCapabilities {
	return driven.SourceCapabilities{SupportsDelta: m.delta}
}

func (m *mockSource) ListChanges(_ context.Context, cursor string) (*driven.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.pageErr[cursor]; ok {
		return nil, err
	}
	page, ok := m.pages[cursor]
	if !ok {
		return nil, fmt.Errorf("unexpected cursor %q", cursor)
	}
	return page, nil
}

func (m *mockSource) Fetch(_ context.Context, itemID string) ([]byte, *driven.Attributes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls[itemID]++
	m.totalFetches++

	if n := m.fetchErrN[itemID]; n > 0 {
		m.fetchErrN[itemID]--
		return nil, nil, fmt.Errorf("%w: simulated transient failure", domain.ErrTransient)
	}
	if err, ok := m.fetchErr[itemID]; ok {
		return nil, nil, err
	}

	data, ok := m.content[itemID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
	}
	attrs := m.attrs[itemID]
	return data, &attrs, nil
}

// addItem registers an item's listing entry, content and attributes in
// one call, returning the item for page assembly.
func (m *mockSource) addItem(id, path, fingerprint string, data []byte) domain.Item {
	m.content[id] = data
	m.attrs[id] = driven.Attributes{
		Name:        path,
		Path:        path,
		ContentType: "text/plain",
		SourceURL:   "https://source.example/" + id,
		Size:        int64(len(data)),
		Modified:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	return domain.Item{
		ID:          id,
		Path:        path,
		Name:        path,
		Fingerprint: fingerprint,
		Size:        int64(len(data)),
	}
}

// singlePage scripts one complete listing page with a resume cursor.
func (m *mockSource) singlePage(resumeCursor string, items ...domain.Item) {
	m.pages[""] = &driven.Page{Items: items, NextCursor: resumeCursor}
}

// mockBuilder implements driven.DefinitionBuilder with minimal but
// distinct bodies so definition hashes react to config changes.
type mockBuilder struct {
	buildErr error
}

func (b *mockBuilder) Build(cfg domain.VerticalConfig, names domain.VerticalNames) ([]driven.Definition, error) {
	if b.buildErr != nil {
		return nil, b.buildErr
	}
	definitions := make([]driven.Definition, 0, len(domain.CreationOrder))
	for _, typ := range domain.CreationOrder {
		definitions = append(definitions, driven.Definition{
			Type: typ,
			Name: names.Name(typ),
			Body: map[string]any{
				"name":      names.Name(typ),
				"container": cfg.Container,
				"chunkSize": cfg.ChunkSize,
				"overlap":   cfg.Overlap,
			},
		})
	}
	return definitions, nil
}
