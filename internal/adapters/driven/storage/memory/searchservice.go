package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure SearchService implements both service-side interfaces.
var (
	_ driven.ResourceClient = (*SearchService)(nil)
	_ driven.IndexerClient  = (*SearchService)(nil)
)

// SearchService is an in-memory fake of the pipeline resource service and
// indexer control service. Triggering an indexer records an in-progress
// execution; tests complete executions explicitly.
//
// It counts mutating calls (Upsert, Delete) so tests can assert the
// idempotent-apply property: a repeated apply performs zero mutations.
type SearchService struct {
	mu         sync.RWMutex
	resources  map[string]map[string]map[string]any // type -> name -> body
	executions map[string][]driven.Execution        // indexer -> history, newest first
	mutations  int
	upsertErr  map[string]error // type/name -> forced error
}

// NewSearchService creates a new in-memory search service fake.
func NewSearchService() *SearchService {
	return &SearchService{
		resources:  make(map[string]map[string]map[string]any),
		executions: make(map[string][]driven.Execution),
		upsertErr:  make(map[string]error),
	}
}

func resourceKey(typ domain.ResourceType, name string) string {
	return string(typ) + "/" + name
}

// Upsert creates or replaces a resource definition.
func (s *SearchService) Upsert(_ context.Context, typ domain.ResourceType, name string, body map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.upsertErr[resourceKey(typ, name)]; err != nil {
		return err
	}

	if s.resources[string(typ)] == nil {
		s.resources[string(typ)] = make(map[string]map[string]any)
	}
	copied := make(map[string]any, len(body))
	for k, v := range body {
		copied[k] = v
	}
	s.resources[string(typ)][name] = copied
	s.mutations++
	return nil
}

// Get fetches a live resource definition.
func (s *SearchService) Get(_ context.Context, typ domain.ResourceType, name string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.resources[string(typ)][name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return body, nil
}

// Delete removes a resource.
func (s *SearchService) Delete(_ context.Context, typ domain.ResourceType, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[string(typ)][name]; !ok {
		return domain.ErrNotFound
	}
	delete(s.resources[string(typ)], name)
	s.mutations++
	return nil
}

// List enumerates resource names of one type, sorted.
func (s *SearchService) List(_ context.Context, typ domain.ResourceType) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.resources[string(typ)]))
	for name := range s.resources[string(typ)] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Trigger starts one in-progress execution for a known indexer.
func (s *SearchService) Trigger(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[string(domain.ResourceIndexer)][name]; !ok {
		return domain.ErrNotFound
	}
	exec := driven.Execution{
		Status:    "inProgress",
		StartTime: time.Now(),
	}
	s.executions[name] = append([]driven.Execution{exec}, s.executions[name]...)
	return nil
}

// ExecutionHistory returns the indexer's executions, newest first.
func (s *SearchService) ExecutionHistory(_ context.Context, name string) ([]driven.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.resources[string(domain.ResourceIndexer)][name]; !ok {
		return nil, domain.ErrNotFound
	}
	history := make([]driven.Execution, len(s.executions[name]))
	copy(history, s.executions[name])
	return history, nil
}

// CompleteExecution finishes the latest execution for an indexer. Test
// helper.
func (s *SearchService) CompleteExecution(name string, exec driven.Execution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.executions[name]) == 0 {
		s.executions[name] = []driven.Execution{exec}
		return
	}
	s.executions[name][0] = exec
}

// FailUpsert forces the next Upsert of (type, name) to fail. Test helper.
func (s *SearchService) FailUpsert(typ domain.ResourceType, name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertErr[resourceKey(typ, name)] = err
}

// ClearFailures removes forced failures. Test helper.
func (s *SearchService) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertErr = make(map[string]error)
}

// MutationCount returns the number of mutating requests served. Test
// helper.
func (s *SearchService) MutationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mutations
}

// Exists reports whether a resource exists. Test helper.
func (s *SearchService) Exists(typ domain.ResourceType, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.resources[string(typ)][name]
	return ok
}
