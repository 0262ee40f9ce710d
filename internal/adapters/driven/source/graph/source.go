package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
	"github.com/orbital-labs/corpus-cli/internal/logger"
)

// Source implements driven.ContentSource against a drive delta API.
type Source struct {
	cfg     Config
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

var _ driven.ContentSource = (*Source)(nil)

// NewSource creates a drive-backed content source. When no HTTP client is
// injected, requests authenticate via the client-credentials flow.
func NewSource(cfg Config) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	client := cfg.HTTPClient
	if client == nil {
		credentials := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     fmt.Sprintf(DefaultTokenURLFormat, cfg.TenantID),
			Scopes:       []string{DefaultScope},
		}
		client = credentials.Client(context.Background())
		client.Timeout = 60 * time.Second
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}

	return &Source{
		cfg:     cfg,
		baseURL: baseURL,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// SourceID returns the configured source identifier.
func (s *Source) SourceID() string {
	return s.cfg.SourceID
}

// Capabilities reports delta listing support: the drive API returns only
// changed items for a delta cursor, with deletions as explicit tombstone
// entries.
func (s *Source) Capabilities() driven.SourceCapabilities {
	return driven.SourceCapabilities{SupportsDelta: true}
}

// deltaResponse is one page of a drive delta listing.
type deltaResponse struct {
	Value     []driveItem `json:"value"`
	NextLink  string      `json:"@odata.nextLink"`
	DeltaLink string      `json:"@odata.deltaLink"`
}

// driveItem is the subset of the drive item resource the source reads.
type driveItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ETag         string    `json:"eTag"`
	Size         int64     `json:"size"`
	WebURL       string    `json:"webUrl"`
	LastModified time.Time `json:"lastModifiedDateTime"`

	File *struct {
		MimeType string `json:"mimeType"`
		Hashes   *struct {
			QuickXorHash string `json:"quickXorHash"`
			SHA256Hash   string `json:"sha256Hash"`
		} `json:"hashes"`
	} `json:"file"`

	Folder  *struct{} `json:"folder"`
	Deleted *struct {
		State string `json:"state"`
	} `json:"deleted"`

	ParentReference *struct {
		Path string `json:"path"`
	} `json:"parentReference"`
}

// ListChanges returns one page of the drive listing. An empty cursor
// starts a fresh delta walk; otherwise the cursor is the next or delta
// link returned by a previous page.
func (s *Source) ListChanges(ctx context.Context, cursor string) (*driven.Page, error) {
	url := cursor
	if url == "" {
		url = fmt.Sprintf("%s/drives/%s/root/delta?$top=%d", s.baseURL, s.cfg.DriveID, DefaultPageSize)
	}

	var response deltaResponse
	if err := s.getJSON(ctx, url, &response); err != nil {
		return nil, fmt.Errorf("list drive %s: %w", s.cfg.DriveID, err)
	}

	page := &driven.Page{}
	for _, entry := range response.Value {
		item, ok := s.toItem(entry)
		if !ok {
			continue
		}
		page.Items = append(page.Items, item)
	}

	switch {
	case response.NextLink != "":
		page.NextCursor = response.NextLink
		page.HasMore = true
	case response.DeltaLink != "":
		page.NextCursor = response.DeltaLink
	}
	return page, nil
}

// toItem maps a drive item onto the domain model. Folders are structural
// and carry no content; they are dropped.
func (s *Source) toItem(entry driveItem) (domain.Item, bool) {
	if entry.Deleted != nil {
		return domain.Item{
			ID:      entry.ID,
			Name:    entry.Name,
			Deleted: true,
		}, true
	}
	if entry.Folder != nil || entry.File == nil {
		return domain.Item{}, false
	}

	item := domain.Item{
		ID:          entry.ID,
		Name:        entry.Name,
		Path:        itemPath(entry),
		Size:        entry.Size,
		SourceURL:   entry.WebURL,
		ContentType: entry.File.MimeType,
		Modified:    entry.LastModified,
		Fingerprint: entry.ETag,
	}
	if entry.File.Hashes != nil && entry.File.Hashes.QuickXorHash != "" {
		item.Fingerprint = entry.File.Hashes.QuickXorHash
	}
	return item, true
}

// itemPath derives the drive-relative path. Parent paths look like
// "/drives/<id>/root:/sub/dir"; everything before the colon is addressing
// noise.
func itemPath(entry driveItem) string {
	parent := ""
	if entry.ParentReference != nil {
		parent = entry.ParentReference.Path
	}
	if idx := strings.Index(parent, ":"); idx >= 0 {
		parent = parent[idx+1:]
	} else {
		parent = ""
	}
	return parent + "/" + entry.Name
}

// Fetch retrieves an item's bytes and attributes in two requests: the
// item resource for attributes, then the content endpoint for bytes.
func (s *Source) Fetch(ctx context.Context, itemID string) ([]byte, *driven.Attributes, error) {
	var entry driveItem
	url := fmt.Sprintf("%s/drives/%s/items/%s", s.baseURL, s.cfg.DriveID, itemID)
	if err := s.getJSON(ctx, url, &entry); err != nil {
		return nil, nil, fmt.Errorf("fetch item %s: %w", itemID, err)
	}

	data, err := s.getRaw(ctx, url+"/content")
	if err != nil {
		return nil, nil, fmt.Errorf("fetch content %s: %w", itemID, err)
	}

	attrs := &driven.Attributes{
		Name:      entry.Name,
		Path:      itemPath(entry),
		SourceURL: entry.WebURL,
		Size:      int64(len(data)),
		Modified:  entry.LastModified,
	}
	if entry.File != nil {
		attrs.ContentType = entry.File.MimeType
	}
	return data, attrs, nil
}

// getJSON performs a rate-limited GET and decodes the JSON response.
func (s *Source) getJSON(ctx context.Context, url string, out any) error {
	data, err := s.getRaw(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// getRaw performs a rate-limited GET and returns the response body.
func (s *Source) getRaw(ctx context.Context, url string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, s.statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrTransient, err)
	}
	return body, nil
}

// statusError maps an HTTP failure status onto the domain error set.
func (s *Source) statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, resp.Request.URL.Path)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		if after := retryAfter(resp); after > 0 {
			logger.Debug("Source throttled, advised retry after %s", after)
		}
		return fmt.Errorf("%w: status %d", domain.ErrTransient, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, resp.Request.URL.Path)
	}
}

// retryAfter parses the Retry-After header, in seconds.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
