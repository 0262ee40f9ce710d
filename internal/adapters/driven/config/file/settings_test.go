package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validSettings = `
data_dir = "/tmp/corpus-test"

[source]
source_id = "drive-main"
tenant_id = "tenant"
client_id = "client"
client_secret = "secret"
drive_id = "drv1"

[storage]
account_url = "https://acct.blob.core.windows.net"
container = "staging"
sas_token = "sv=2024&sig=x"

[search]
endpoint = "https://corpus.search.windows.net"
api_key = "admin-key"

[pipeline]
storage_connection_string = "DefaultEndpointsProtocol=https;AccountName=acct"
openai_endpoint = "https://oai.example"
openai_api_key = "oai-key"
embedding_deployment = "text-embedding-3-small"

[sync]
concurrency = 8
retry_attempts = 5

[[verticals]]
prefix = "bo"
kind = "general"
container = "staging"
chunk_size = 2000
overlap = 100

[[verticals]]
prefix = "inv"
kind = "structured"
container = "staging"
chunk_size = 5000
overlap = 0
`

func TestLoad_ValidFile(t *testing.T) {
	settings, err := Load(writeSettings(t, validSettings))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/corpus-test", settings.DataDir)
	assert.Equal(t, "drive-main", settings.Source.SourceID)
	assert.Equal(t, "staging", settings.Storage.Container)
	assert.Equal(t, "admin-key", settings.Search.APIKey)
	assert.Equal(t, 8, settings.Sync.Concurrency)
	require.Len(t, settings.Verticals, 2)

	vertical, err := settings.Vertical("inv")
	require.NoError(t, err)
	assert.Equal(t, domain.KindStructured, vertical.Kind)
	assert.Equal(t, 5000, vertical.ChunkSize)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeSettings(t, `
[source]
source_id = "drive-main"
drive_id = "drv1"
chunk_sise = 2000
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "unknown keys")
}

func TestLoad_InvalidVertical(t *testing.T) {
	path := writeSettings(t, `
[[verticals]]
prefix = "Bad Prefix"
kind = "general"
container = "staging"
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_DuplicatePrefixRejected(t *testing.T) {
	path := writeSettings(t, `
[[verticals]]
prefix = "bo"
kind = "general"
container = "staging"

[[verticals]]
prefix = "bo"
kind = "general"
container = "staging"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate vertical prefix")
}

func TestLoad_StructuredOverlapRejected(t *testing.T) {
	path := writeSettings(t, `
[[verticals]]
prefix = "inv"
kind = "structured"
container = "staging"
chunk_size = 5000
overlap = 50
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_LocalSource(t *testing.T) {
	path := writeSettings(t, `
[local_source]
source_id = "docs-dir"
root = "/srv/docs"
`)
	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "docs-dir", settings.LocalSource.SourceID)
	assert.Equal(t, "/srv/docs", settings.LocalSource.Root)
}

func TestLoad_EnvOverridesCredentials(t *testing.T) {
	t.Setenv("CORPUS_CLIENT_SECRET", "env-secret")
	t.Setenv("CORPUS_SEARCH_API_KEY", "env-key")

	settings, err := Load(writeSettings(t, validSettings))
	require.NoError(t, err)

	assert.Equal(t, "env-secret", settings.Source.ClientSecret)
	assert.Equal(t, "env-key", settings.Search.APIKey)
	// Unset variables leave file values alone.
	assert.Equal(t, "sv=2024&sig=x", settings.Storage.SASToken)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestVertical_Missing(t *testing.T) {
	settings := &Settings{}
	_, err := settings.Vertical("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
