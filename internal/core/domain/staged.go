package domain

import (
	"strings"
	"time"
)

// SidecarSuffix is appended to an object key to derive its metadata
// sidecar key. The suffix is excluded from indexing by default so the
// sidecars never pollute the searchable corpus.
const SidecarSuffix = ".meta.json"

// StagedObject is a durable-storage object plus its metadata sidecar.
// The object and sidecar are written together; a sidecar may briefly lag
// its object after a crash, which the next run reconciles by fingerprint.
type StagedObject struct {
	// Key is the storage key, derived deterministically from the item path.
	Key string

	// SidecarKey is Key + SidecarSuffix.
	SidecarKey string

	// StagedHash is the SHA-256 of the written bytes.
	StagedHash string

	// SourceURL is the originating item's canonical URL.
	SourceURL string

	// ContentType is the MIME type written with the object.
	ContentType string

	// Size is the number of bytes written.
	Size int64

	// StagedAt is when the write completed.
	StagedAt time.Time
}

// Sidecar is the JSON document written alongside each staged object.
// Field names follow the staging metadata convention consumed by the
// indexing pipeline's field mappings.
type Sidecar struct {
	OriginalURL  string    `json:"originalUrl"`
	Name         string    `json:"name"`
	BlobKey      string    `json:"blobKey"`
	ContentHash  string    `json:"contentHash"`
	ContentType  string    `json:"contentType,omitempty"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// ObjectKey derives the storage key for an item path. The derivation is a
// pure function: the same path always yields the same key.
func ObjectKey(path string) string {
	key := strings.TrimPrefix(path, "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return key
}

// SidecarKey derives the sidecar key for an object key.
func SidecarKey(objectKey string) string {
	return objectKey + SidecarSuffix
}

// IsSidecarKey reports whether a storage key belongs to a metadata sidecar.
func IsSidecarKey(key string) bool {
	return strings.HasSuffix(key, SidecarSuffix)
}
