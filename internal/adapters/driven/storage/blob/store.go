package blob

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
)

// metadataHeaderPrefix marks per-blob metadata headers.
const metadataHeaderPrefix = "x-ms-meta-"

// Config configures a blob container binding.
type Config struct {
	// AccountURL is the storage account endpoint, e.g.
	// https://<account>.blob.core.windows.net.
	AccountURL string `toml:"account_url"`

	// Container is the target container name.
	Container string `toml:"container"`

	// SASToken authorises requests; appended as the query string.
	SASToken string `toml:"sas_token"`

	// HTTPClient overrides the transport. Set by tests.
	HTTPClient *http.Client `toml:"-"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.AccountURL == "" {
		return fmt.Errorf("%w: account_url is required", domain.ErrInvalidInput)
	}
	if c.Container == "" {
		return fmt.Errorf("%w: container is required", domain.ErrInvalidInput)
	}
	return nil
}

// Store implements driven.ObjectStore over one blob container.
type Store struct {
	cfg    Config
	base   string
	client *http.Client
}

var _ driven.ObjectStore = (*Store)(nil)

// NewStore creates a blob-backed object store.
func NewStore(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	return &Store{
		cfg:    cfg,
		base:   strings.TrimSuffix(cfg.AccountURL, "/") + "/" + cfg.Container,
		client: client,
	}, nil
}

// blobURL builds the authorised URL for a key. Keys contain path
// separators, so each segment is escaped individually.
func (s *Store) blobURL(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	u := s.base + "/" + strings.Join(segments, "/")
	if s.cfg.SASToken != "" {
		u += "?" + strings.TrimPrefix(s.cfg.SASToken, "?")
	}
	return u
}

// Put writes a block blob and its metadata in one request.
func (s *Store) Put(ctx context.Context, key string, data []byte, metadata map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.blobURL(key), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-ms-blob-type", "BlockBlob")
	req.ContentLength = int64(len(data))
	for name, value := range metadata {
		req.Header.Set(metadataHeaderPrefix+name, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", domain.ErrTransient, key, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return statusError("put", key, resp)
	}
	return nil
}

// Get returns a blob's bytes.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.blobURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", domain.ErrTransient, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get", key, resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrTransient, key, err)
	}
	return data, nil
}

// listResponse mirrors the container listing XML.
type listResponse struct {
	Blobs struct {
		Blob []struct {
			Name       string `xml:"Name"`
			Properties struct {
				ContentLength int64  `xml:"Content-Length"`
				LastModified  string `xml:"Last-Modified"`
			} `xml:"Properties"`
		} `xml:"Blob"`
	} `xml:"Blobs"`
	NextMarker string `xml:"NextMarker"`
}

// List enumerates blobs under a key prefix, following continuation
// markers until the listing is exhausted.
func (s *Store) List(ctx context.Context, prefix string) ([]driven.ObjectInfo, error) {
	var infos []driven.ObjectInfo
	marker := ""

	for {
		endpoint := s.base + "?restype=container&comp=list&prefix=" + url.QueryEscape(prefix)
		if marker != "" {
			endpoint += "&marker=" + url.QueryEscape(marker)
		}
		if s.cfg.SASToken != "" {
			endpoint += "&" + strings.TrimPrefix(s.cfg.SASToken, "?")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: list: %v", domain.ErrTransient, err)
		}

		if resp.StatusCode != http.StatusOK {
			err := statusError("list", prefix, resp)
			drain(resp)
			return nil, err
		}

		var listing listResponse
		decodeErr := xml.NewDecoder(resp.Body).Decode(&listing)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("decoding listing: %w", decodeErr)
		}

		for _, blob := range listing.Blobs.Blob {
			info := driven.ObjectInfo{
				Key:  blob.Name,
				Size: blob.Properties.ContentLength,
			}
			if modified, err := time.Parse(time.RFC1123, blob.Properties.LastModified); err == nil {
				info.Modified = modified
			}
			infos = append(infos, info)
		}

		if listing.NextMarker == "" {
			return infos, nil
		}
		marker = listing.NextMarker
	}
}

// Delete removes a blob. A missing blob is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.blobURL(key), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", domain.ErrTransient, key, err)
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return statusError("delete", key, resp)
	}
	return nil
}

// statusError maps a storage failure status onto the domain error set.
func statusError(op, key string, resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s %s: status %d", domain.ErrTransient, op, key, resp.StatusCode)
	default:
		return fmt.Errorf("%s %s: unexpected status %d", op, key, resp.StatusCode)
	}
}

// drain discards and closes a response body so the connection is reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
