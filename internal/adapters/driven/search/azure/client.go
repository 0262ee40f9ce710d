package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
)

// DefaultAPIVersion is the service API version sent with every request.
const DefaultAPIVersion = "2024-07-01"

// Config configures the search service client.
type Config struct {
	// Endpoint is the service URL, e.g. https://<name>.search.windows.net.
	Endpoint string `toml:"endpoint"`

	// APIKey is the admin key sent in the api-key header.
	APIKey string `toml:"api_key"`

	// APIVersion overrides the service API version.
	APIVersion string `toml:"api_version"`

	// HTTPClient overrides the transport. Set by tests.
	HTTPClient *http.Client `toml:"-"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", domain.ErrInvalidInput)
	}
	if c.APIKey == "" && c.HTTPClient == nil {
		return fmt.Errorf("%w: api_key is required", domain.ErrInvalidInput)
	}
	return nil
}

// Client implements driven.ResourceClient and driven.IndexerClient over
// the service REST API.
type Client struct {
	cfg      Config
	endpoint string
	version  string
	client   *http.Client
}

var (
	_ driven.ResourceClient = (*Client)(nil)
	_ driven.IndexerClient  = (*Client)(nil)
)

// NewClient creates a search service client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}

	return &Client{
		cfg:      cfg,
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		version:  version,
		client:   client,
	}, nil
}

// collection maps a resource type onto its REST collection segment.
func collection(typ domain.ResourceType) string {
	switch typ {
	case domain.ResourceDataSource:
		return "datasources"
	case domain.ResourceSkillset:
		return "skillsets"
	case domain.ResourceIndex:
		return "indexes"
	case domain.ResourceIndexer:
		return "indexers"
	}
	return string(typ)
}

// resourceURL builds the versioned URL for one resource.
func (c *Client) resourceURL(typ domain.ResourceType, name string) string {
	return fmt.Sprintf("%s/%s/%s?api-version=%s", c.endpoint, collection(typ), name, c.version)
}

// do performs one request with service headers and maps failure statuses.
func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("api-key", c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrTransient, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return payload, nil
	}
	return nil, c.statusError(resp.StatusCode, payload)
}

// statusError maps a failure status onto the domain error set, carrying
// the service's own error message where one is present.
func (c *Client) statusError(status int, payload []byte) error {
	detail := serviceMessage(payload)

	switch status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrResourceConflict, detail)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrSearchUnavailable, status)
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: status %d: %s", domain.ErrTransient, status, detail)
	default:
		return fmt.Errorf("unexpected status %d: %s", status, detail)
	}
}

// serviceMessage extracts the error message from a service error body.
func serviceMessage(payload []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return strings.TrimSpace(string(payload))
}

// Upsert creates or replaces a resource definition via PUT.
func (c *Client) Upsert(ctx context.Context, typ domain.ResourceType, name string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling %s %q: %w", typ, name, err)
	}
	if _, err := c.do(ctx, http.MethodPut, c.resourceURL(typ, name), payload); err != nil {
		return fmt.Errorf("upsert %s %q: %w", typ, name, err)
	}
	return nil
}

// Get fetches a live resource definition.
func (c *Client) Get(ctx context.Context, typ domain.ResourceType, name string) (map[string]any, error) {
	payload, err := c.do(ctx, http.MethodGet, c.resourceURL(typ, name), nil)
	if err != nil {
		return nil, err
	}
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decoding %s %q: %w", typ, name, err)
	}
	return body, nil
}

// Delete removes a resource. Missing resources surface as
// domain.ErrNotFound for the caller to treat as already deleted.
func (c *Client) Delete(ctx context.Context, typ domain.ResourceType, name string) error {
	if _, err := c.do(ctx, http.MethodDelete, c.resourceURL(typ, name), nil); err != nil {
		return err
	}
	return nil
}

// List enumerates resource names of one type.
func (c *Client) List(ctx context.Context, typ domain.ResourceType) ([]string, error) {
	url := fmt.Sprintf("%s/%s?api-version=%s&$select=name", c.endpoint, collection(typ), c.version)
	payload, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection(typ), err)
	}

	var body struct {
		Value []struct {
			Name string `json:"name"`
		} `json:"value"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decoding %s listing: %w", collection(typ), err)
	}

	names := make([]string, 0, len(body.Value))
	for _, entry := range body.Value {
		names = append(names, entry.Name)
	}
	return names, nil
}

// Trigger starts one indexer run without waiting for completion.
func (c *Client) Trigger(ctx context.Context, name string) error {
	url := fmt.Sprintf("%s/indexers/%s/run?api-version=%s", c.endpoint, name, c.version)
	if _, err := c.do(ctx, http.MethodPost, url, nil); err != nil {
		return fmt.Errorf("run indexer %q: %w", name, err)
	}
	return nil
}

// executionResult is one entry of the indexer status response.
type executionResult struct {
	Status         string `json:"status"`
	ItemsProcessed int    `json:"itemsProcessed"`
	ItemsFailed    int    `json:"itemsFailed"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Errors         []struct {
		ErrorMessage string `json:"errorMessage"`
		Key          string `json:"key"`
	} `json:"errors"`
}

// ExecutionHistory returns the indexer's executions, newest first, as the
// service reports them.
func (c *Client) ExecutionHistory(ctx context.Context, name string) ([]driven.Execution, error) {
	url := fmt.Sprintf("%s/indexers/%s/status?api-version=%s", c.endpoint, name, c.version)
	payload, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("indexer status %q: %w", name, err)
	}

	var body struct {
		ExecutionHistory []executionResult `json:"executionHistory"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decoding indexer status %q: %w", name, err)
	}

	executions := make([]driven.Execution, 0, len(body.ExecutionHistory))
	for _, result := range body.ExecutionHistory {
		executions = append(executions, toExecution(result))
	}
	return executions, nil
}

// toExecution maps one service execution result onto the port type.
func toExecution(result executionResult) driven.Execution {
	execution := driven.Execution{
		Status:         result.Status,
		ItemsProcessed: result.ItemsProcessed,
		ItemsFailed:    result.ItemsFailed,
	}
	if start, err := time.Parse(time.RFC3339, result.StartTime); err == nil {
		execution.StartTime = start
	}
	if result.EndTime != "" {
		if end, err := time.Parse(time.RFC3339, result.EndTime); err == nil {
			execution.EndTime = end
		}
	}
	for _, entry := range result.Errors {
		execution.Errors = append(execution.Errors, driven.ExecutionError{
			Message: entry.ErrorMessage,
			Key:     entry.Key,
		})
	}
	return execution
}
