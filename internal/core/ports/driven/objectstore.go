package driven

import (
	"context"
	"time"
)

// ObjectInfo describes one stored object in a listing.
type ObjectInfo struct {
	Key      string
	Size     int64
	Modified time.Time
}

// ObjectStore is durable object storage for staged content.
//
// No read-after-write guarantee is assumed: the store may be eventually
// consistent. Object and sidecar writes are two separate calls; the
// stager reconciles a lagging sidecar on the next run by fingerprint.
type ObjectStore interface {
	// Put writes an object with its metadata, overwriting any existing
	// object under the key.
	Put(ctx context.Context, key string, data []byte, metadata map[string]string) error

	// Get reads an object's bytes. Returns domain.ErrNotFound for a
	// missing key.
	Get(ctx context.Context, key string) ([]byte, error)

	// List enumerates objects under a key prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
