// Package config holds run configuration for the schema index generator.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/schemaindex/generator/internal/domain"
)

// DefaultBaseURL prefixes constructed schema URLs when no override is given.
const DefaultBaseURL = "https://schemaindex.dev/schemas"

// Config holds all generator configuration
type Config struct {
	// Git is the repository location; parent directories are searched for
	// a .git directory.
	Git string `yaml:"git" validate:"required"`

	// Dir is the repository-relative directory scanned for schema documents.
	Dir string `yaml:"dir" validate:"required"`

	// Out is the output index file path.
	Out string `yaml:"out" validate:"required"`

	// BaseURL prefixes constructed schema URLs.
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// Extension of local schema documents, without the dot.
	Extension string `yaml:"extension" validate:"required,alphanum"`

	// SchemaStore enables remote catalog integration.
	SchemaStore bool `yaml:"schema_store"`

	// CatalogURL overrides the remote catalog endpoint.
	CatalogURL string `yaml:"catalog_url" validate:"omitempty,url"`

	// CatalogExtension filters catalog file matches, without the dot.
	CatalogExtension string `yaml:"catalog_extension" validate:"required,alphanum"`

	// FetchTimeout bounds the catalog fetch. Set via flag, not the file.
	FetchTimeout time.Duration `yaml:"-"`
}

// NewDefault returns a Config with default values.
func NewDefault() *Config {
	return &Config{
		Git:              ".",
		Out:              "schema_index.json",
		BaseURL:          DefaultBaseURL,
		Extension:        "json",
		CatalogExtension: "toml",
		FetchTimeout:     30 * time.Second,
	}
}

// LoadFile overlays configuration from a YAML file, expanding environment
// variables in the file body.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// Validate normalizes the base URL and checks the configuration.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if err := domain.NewValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
