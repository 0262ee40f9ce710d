package graph

import (
	"fmt"
	"net/http"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

const (
	// DefaultBaseURL is the production Graph endpoint.
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	// DefaultTokenURLFormat is the client-credentials token endpoint,
	// parameterised by tenant.
	DefaultTokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"

	// DefaultScope requests the application permissions granted to the
	// client registration.
	DefaultScope = "https://graph.microsoft.com/.default"

	// DefaultRequestsPerSecond is the proactive throttle rate. Graph
	// throttles per app per tenant; staying below the limit avoids 429
	// churn on large drives.
	DefaultRequestsPerSecond = 4

	// DefaultPageSize is the requested listing page size.
	DefaultPageSize = 200
)

// Config configures a drive-backed content source.
type Config struct {
	// SourceID names this source in records and logs.
	SourceID string `toml:"source_id"`

	// TenantID, ClientID and ClientSecret identify the client-credentials
	// application registration.
	TenantID     string `toml:"tenant_id"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`

	// DriveID is the drive whose items are synchronised.
	DriveID string `toml:"drive_id"`

	// BaseURL overrides the Graph endpoint. Empty means production.
	BaseURL string `toml:"base_url"`

	// RequestsPerSecond overrides the proactive throttle rate.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// HTTPClient overrides the authenticated client. Set by tests; when
	// nil a client-credentials client is built from the fields above.
	HTTPClient *http.Client `toml:"-"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SourceID == "" {
		return fmt.Errorf("%w: source_id is required", domain.ErrInvalidInput)
	}
	if c.DriveID == "" {
		return fmt.Errorf("%w: drive_id is required", domain.ErrInvalidInput)
	}
	if c.HTTPClient == nil {
		if c.TenantID == "" || c.ClientID == "" || c.ClientSecret == "" {
			return fmt.Errorf("%w: tenant_id, client_id and client_secret are required", domain.ErrInvalidInput)
		}
	}
	return nil
}
