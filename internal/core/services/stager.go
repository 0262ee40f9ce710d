package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
	"github.com/orbital-labs/corpus-cli/internal/logger"
)

// Metadata keys written with every staged object. The downstream indexer
// maps these onto index fields.
const (
	MetaSourceURL    = "source_url"
	MetaContentHash  = "content_hash"
	MetaItemID       = "item_id"
	MetaLastModified = "last_modified"
	MetaFileName     = "file_name"
)

// ContentStager fetches changed items and writes them, with a metadata
// sidecar, to durable storage. Writes are skipped when the recomputed
// content hash matches the hash recorded at the last staging.
type ContentStager struct {
	source  driven.ContentSource
	store   driven.ObjectStore
	retries int
	delay   time.Duration
}

// StagerOption configures a ContentStager.
type StagerOption func(*ContentStager)

// WithRetries sets the per-call retry attempts for transient failures.
func WithRetries(attempts int) StagerOption {
	return func(s *ContentStager) {
		if attempts > 0 {
			s.retries = attempts
		}
	}
}

// WithRetryDelay sets the initial backoff delay.
func WithRetryDelay(delay time.Duration) StagerOption {
	return func(s *ContentStager) {
		if delay > 0 {
			s.delay = delay
		}
	}
}

// NewContentStager creates a stager for a source and object store.
func NewContentStager(source driven.ContentSource, store driven.ObjectStore, opts ...StagerOption) *ContentStager {
	s := &ContentStager{
		source:  source,
		store:   store,
		retries: DefaultRetryAttempts,
		delay:   DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fingerprint computes the content hash the stager records for staged
// bytes.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Stage fetches one item and writes it to durable storage unless its
// recomputed fingerprint equals priorHash. The skipped return is true
// when no write was performed.
//
// The object and sidecar are two separate writes; the sidecar may lag the
// object after a crash, which the next run reconciles because the
// recorded hash only updates once the caller persists the item record.
func (s *ContentStager) Stage(ctx context.Context, item domain.Item, priorHash string) (*domain.StagedObject, bool, error) {
	var (
		data  []byte
		attrs *driven.Attributes
	)
	err := withRetry(ctx, s.retries, s.delay, func() error {
		var fetchErr error
		data, attrs, fetchErr = s.source.Fetch(ctx, item.ID)
		return fetchErr
	})
	if err != nil {
		return nil, false, fmt.Errorf("fetch %s: %w", item.ID, err)
	}

	hash := Fingerprint(data)
	if priorHash != "" && hash == priorHash {
		logger.Debug("Skipping %s: content unchanged (%s)", item.Path, hash[:12])
		return nil, true, nil
	}

	key := domain.ObjectKey(attrs.Path)
	if key == "" {
		key = domain.ObjectKey(item.Path)
	}

	staged := &domain.StagedObject{
		Key:         key,
		SidecarKey:  domain.SidecarKey(key),
		StagedHash:  hash,
		SourceURL:   attrs.SourceURL,
		ContentType: attrs.ContentType,
		Size:        int64(len(data)),
		StagedAt:    time.Now(),
	}

	metadata := map[string]string{
		MetaSourceURL:    attrs.SourceURL,
		MetaContentHash:  hash,
		MetaItemID:       item.ID,
		MetaLastModified: attrs.Modified.UTC().Format(time.RFC3339),
		MetaFileName:     attrs.Name,
	}

	err = withRetry(ctx, s.retries, s.delay, func() error {
		return s.store.Put(ctx, key, data, metadata)
	})
	if err != nil {
		return nil, false, fmt.Errorf("put %s: %w", key, err)
	}

	sidecar := domain.Sidecar{
		OriginalURL:  attrs.SourceURL,
		Name:         attrs.Name,
		BlobKey:      key,
		ContentHash:  hash,
		ContentType:  attrs.ContentType,
		Size:         staged.Size,
		LastModified: attrs.Modified,
	}
	sidecarData, err := json.MarshalIndent(sidecar, "", "  ")
	if err != nil {
		return nil, false, fmt.Errorf("marshal sidecar for %s: %w", key, err)
	}

	err = withRetry(ctx, s.retries, s.delay, func() error {
		return s.store.Put(ctx, staged.SidecarKey, sidecarData, map[string]string{
			MetaContentHash: hash,
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("put sidecar %s: %w", staged.SidecarKey, err)
	}

	logger.Debug("Staged %s (%d bytes)", key, staged.Size)
	return staged, false, nil
}

// Unstage removes an item's object and sidecar from durable storage.
// Missing objects are not an error: deletion is idempotent.
func (s *ContentStager) Unstage(ctx context.Context, path string) error {
	key := domain.ObjectKey(path)
	err := withRetry(ctx, s.retries, s.delay, func() error {
		return s.store.Delete(ctx, key)
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	err = withRetry(ctx, s.retries, s.delay, func() error {
		return s.store.Delete(ctx, domain.SidecarKey(key))
	})
	if err != nil {
		return fmt.Errorf("delete sidecar for %s: %w", key, err)
	}
	return nil
}
