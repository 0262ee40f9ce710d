// Package localfs implements a content source over a local directory
// tree. It exists for development and for corpora that already live on
// disk: no credentials, no network. The source is not delta-capable, so
// every listing is a full enumeration and the tracker infers deletions
// from absence.
package localfs

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
)

// DefaultPageSize bounds one listing page.
const DefaultPageSize = 500

// Config describes a local directory source.
type Config struct {
	// SourceID identifies the source in records and logs.
	SourceID string `toml:"source_id"`

	// Root is the directory to enumerate.
	Root string `toml:"root"`

	// PageSize overrides DefaultPageSize when positive.
	PageSize int `toml:"page_size"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SourceID == "" {
		return fmt.Errorf("%w: source_id is required", domain.ErrInvalidInput)
	}
	if c.Root == "" {
		return fmt.Errorf("%w: root is required", domain.ErrInvalidInput)
	}
	return nil
}

// Source walks a directory tree and serves files as items. Item IDs are
// the slash-separated paths relative to the root, which are stable across
// runs for an unmoved file.
type Source struct {
	cfg      Config
	pageSize int
}

var _ driven.ContentSource = (*Source)(nil)

// NewSource validates the configuration and returns a directory source.
func NewSource(cfg Config) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Source{cfg: cfg, pageSize: pageSize}, nil
}

func (s *Source) SourceID() string {
	return s.cfg.SourceID
}

func (s *Source) Capabilities() driven.SourceCapabilities {
	return driven.SourceCapabilities{SupportsDelta: false}
}

// ListChanges enumerates the tree and returns the page the cursor points
// at. The walk is re-run per page; the cursor is a plain offset into the
// sorted path list, so a tree that changes mid-walk can skew a page
// boundary but never corrupts the listing.
func (s *Source) ListChanges(_ context.Context, cursor string) (*driven.Page, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: malformed cursor %q", domain.ErrInvalidInput, cursor)
		}
		offset = n
	}

	items, err := s.enumerate()
	if err != nil {
		return nil, err
	}

	if offset >= len(items) {
		return &driven.Page{}, nil
	}

	end := offset + s.pageSize
	page := &driven.Page{}
	if end < len(items) {
		page.Items = items[offset:end]
		page.NextCursor = strconv.Itoa(end)
		page.HasMore = true
		return page, nil
	}

	page.Items = items[offset:]
	return page, nil
}

// Fetch reads the file the item ID names. IDs escaping the root are
// rejected rather than resolved.
func (s *Source) Fetch(_ context.Context, itemID string) ([]byte, *driven.Attributes, error) {
	abs, err := s.resolve(itemID)
	if err != nil {
		return nil, nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
		}
		return nil, nil, fmt.Errorf("stat %s: %w", itemID, err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("%w: item %s is not a regular file", domain.ErrInvalidInput, itemID)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", itemID, err)
	}

	attrs := &driven.Attributes{
		Name:        filepath.Base(abs),
		Path:        itemID,
		ContentType: mime.TypeByExtension(filepath.Ext(abs)),
		SourceURL:   "file://" + abs,
		Size:        info.Size(),
		Modified:    info.ModTime(),
	}
	return data, attrs, nil
}

// enumerate collects every regular file under the root as an item, in
// sorted path order so page offsets are deterministic.
func (s *Source) enumerate() ([]domain.Item, error) {
	var items []domain.Item
	root := filepath.Clean(s.cfg.Root)

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		items = append(items, domain.Item{
			ID:          rel,
			Path:        rel,
			Name:        d.Name(),
			Fingerprint: fingerprint(info),
			Size:        info.Size(),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			SourceURL:   "file://" + path,
			Modified:    info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}

// fingerprint derives a cheap change marker from file metadata. The
// stager recomputes the real content hash after fetching, so a spurious
// fingerprint change costs one read, never a wrong index.
func fingerprint(info os.FileInfo) string {
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano())
}

// resolve maps an item ID back to an absolute path inside the root.
func (s *Source) resolve(itemID string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(itemID))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: item %q outside source root", domain.ErrInvalidInput, itemID)
	}
	return filepath.Join(filepath.Clean(s.cfg.Root), rel), nil
}
