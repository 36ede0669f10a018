// Package schemastore integrates third-party schema descriptors from the
// remote schema store catalog into the generated index.
package schemastore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/schemaindex/generator/internal/domain"
)

// DefaultCatalogURL is the canonical catalog endpoint.
const DefaultCatalogURL = "https://www.schemastore.org/api/json/catalog.json"

// Client fetches the remote catalog.
type Client struct {
	url    string
	httpc  *http.Client
	logger *slog.Logger
}

// ClientConfig holds catalog client configuration
type ClientConfig struct {
	CatalogURL string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// NewClient creates a catalog client. The fetch is a single blocking call
// with no retry; transient failures are the operator's to rerun.
func NewClient(cfg ClientConfig) *Client {
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = DefaultCatalogURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		url:    cfg.CatalogURL,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: cfg.Logger,
	}
}

// Fetch downloads and decodes the catalog.
func (c *Client) Fetch(ctx context.Context) (*domain.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog fetch returned %s", resp.Status)
	}

	var catalog domain.Catalog
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c.logger.Debug("catalog fetched", "url", c.url, "schemas", len(catalog.Schemas))
	return &catalog, nil
}
