package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// storedObject is one object plus its metadata.
type storedObject struct {
	data     []byte
	metadata map[string]string
	modified time.Time
}

// ObjectStore is an in-memory implementation of driven.ObjectStore.
// It additionally counts writes so tests can assert on the fingerprint
// short-circuit property.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string]storedObject
	puts    int
}

// NewObjectStore creates a new in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		objects: make(map[string]storedObject),
	}
}

// Put writes an object with its metadata.
func (s *ObjectStore) Put(_ context.Context, key string, data []byte, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := storedObject{
		data:     append([]byte(nil), data...),
		metadata: make(map[string]string, len(metadata)),
		modified: time.Now(),
	}
	for k, v := range metadata {
		stored.metadata[k] = v
	}
	s.objects[key] = stored
	s.puts++
	return nil
}

// Get reads an object's bytes.
func (s *ObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), obj.data...), nil
}

// List enumerates objects under a key prefix, sorted by key.
func (s *ObjectStore) List(_ context.Context, prefix string) ([]driven.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var infos []driven.ObjectInfo
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, driven.ObjectInfo{
				Key:      key,
				Size:     int64(len(obj.data)),
				Modified: obj.modified,
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Delete removes an object. Missing keys are not an error.
func (s *ObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Metadata returns the stored metadata for a key. Test helper.
func (s *ObjectStore) Metadata(key string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil
	}
	return obj.metadata
}

// PutCount returns the number of Put calls performed. Test helper.
func (s *ObjectStore) PutCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
