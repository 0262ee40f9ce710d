package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

func testConfig(serverURL string) Config {
	return Config{
		SourceID:          "drive-main",
		DriveID:           "drv1",
		BaseURL:           serverURL,
		RequestsPerSecond: 1000,
		HTTPClient:        http.DefaultClient,
	}
}

func fileEntry(id, name, parent, hash string, size int) map[string]any {
	return map[string]any{
		"id":                   id,
		"name":                 name,
		"eTag":                 "etag-" + id,
		"size":                 size,
		"webUrl":               "https://drive.example/" + id,
		"lastModifiedDateTime": "2025-06-01T12:00:00Z",
		"file": map[string]any{
			"mimeType": "text/plain",
			"hashes":   map[string]any{"quickXorHash": hash},
		},
		"parentReference": map[string]any{"path": "/drives/drv1/root:" + parent},
	}
}

func TestListChanges_SinglePageDelta(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drives/drv1/root/delta", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"value": []any{
				fileEntry("A", "a.txt", "/docs", "h1", 10),
				map[string]any{"id": "dir1", "name": "docs", "folder": map[string]any{}},
				map[string]any{"id": "C", "name": "c.txt", "deleted": map[string]any{"state": "deleted"}},
			},
			"@odata.deltaLink": "https://graph.example/delta?token=T1",
		})
	}))
	defer server.Close()

	source, err := NewSource(testConfig(server.URL))
	require.NoError(t, err)
	assert.True(t, source.Capabilities().SupportsDelta)

	page, err := source.ListChanges(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Equal(t, "https://graph.example/delta?token=T1", page.NextCursor)

	// The folder is dropped; the file and the tombstone survive.
	require.Len(t, page.Items, 2)
	assert.Equal(t, "A", page.Items[0].ID)
	assert.Equal(t, "/docs/a.txt", page.Items[0].Path)
	assert.Equal(t, "h1", page.Items[0].Fingerprint)
	assert.Equal(t, "https://drive.example/A", page.Items[0].SourceURL)
	assert.True(t, page.Items[1].Deleted)
	assert.Equal(t, "C", page.Items[1].ID)
}

func TestListChanges_Pagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/drives/drv1/root/delta":
			json.NewEncoder(w).Encode(map[string]any{
				"value":           []any{fileEntry("A", "a.txt", "", "h1", 1)},
				"@odata.nextLink": server.URL + "/page2",
			})
		case "/page2":
			json.NewEncoder(w).Encode(map[string]any{
				"value":            []any{fileEntry("B", "b.txt", "", "h2", 1)},
				"@odata.deltaLink": server.URL + "/delta?token=T2",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	source, err := NewSource(testConfig(server.URL))
	require.NoError(t, err)

	page, err := source.ListChanges(context.Background(), "")
	require.NoError(t, err)
	require.True(t, page.HasMore)

	page, err = source.ListChanges(context.Background(), page.NextCursor)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "B", page.Items[0].ID)
	assert.Equal(t, server.URL+"/delta?token=T2", page.NextCursor)
}

func TestListChanges_ThrottledIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	source, err := NewSource(testConfig(server.URL))
	require.NoError(t, err)

	_, err = source.ListChanges(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestFetch_BytesAndAttributes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/drives/drv1/items/A":
			json.NewEncoder(w).Encode(fileEntry("A", "a.txt", "/docs", "h1", 5))
		case "/drives/drv1/items/A/content":
			fmt.Fprint(w, "hello")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	source, err := NewSource(testConfig(server.URL))
	require.NoError(t, err)

	data, attrs, err := source.Fetch(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "a.txt", attrs.Name)
	assert.Equal(t, "/docs/a.txt", attrs.Path)
	assert.Equal(t, "text/plain", attrs.ContentType)
	assert.EqualValues(t, 5, attrs.Size)
}

func TestFetch_MissingItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	source, err := NewSource(testConfig(server.URL))
	require.NoError(t, err)

	_, _, err = source.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid with injected client",
			cfg:  Config{SourceID: "s", DriveID: "d", HTTPClient: http.DefaultClient},
		},
		{
			name:    "missing source id",
			cfg:     Config{DriveID: "d", HTTPClient: http.DefaultClient},
			wantErr: true,
		},
		{
			name:    "missing drive id",
			cfg:     Config{SourceID: "s", HTTPClient: http.DefaultClient},
			wantErr: true,
		},
		{
			name:    "credentials required without injected client",
			cfg:     Config{SourceID: "s", DriveID: "d", TenantID: "t"},
			wantErr: true,
		},
		{
			name: "full credentials",
			cfg: Config{
				SourceID: "s", DriveID: "d",
				TenantID: "t", ClientID: "c", ClientSecret: "sec",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
