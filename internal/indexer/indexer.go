// Package indexer assembles the schema index document.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/schemaindex/generator/internal/checksum"
	"github.com/schemaindex/generator/internal/domain"
	"github.com/schemaindex/generator/internal/gitstore"
	"github.com/schemaindex/generator/internal/schemastore"
)

// Indexer orchestrates candidate enumeration, history resolution, entry
// construction and optional catalog integration.
type Indexer struct {
	store      *gitstore.Store
	baseURL    string
	dir        string
	ext        string
	catalog    *schemastore.Client
	integrator *schemastore.Integrator
	logger     *slog.Logger
}

// Config holds indexer configuration
type Config struct {
	Store   *gitstore.Store
	BaseURL string

	// Dir is the repository-relative directory scanned for schema documents.
	Dir string

	// Extension of local schema documents, without the dot.
	Extension string

	// Catalog and Integrator enable remote catalog integration when both
	// are set.
	Catalog    *schemastore.Client
	Integrator *schemastore.Integrator

	Logger *slog.Logger
}

// New creates a new indexer instance
func New(cfg Config) (*Indexer, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if cfg.Extension == "" {
		cfg.Extension = "json"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Indexer{
		store:      cfg.Store,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		dir:        cfg.Dir,
		ext:        cfg.Extension,
		catalog:    cfg.Catalog,
		integrator: cfg.Integrator,
		logger:     cfg.Logger,
	}, nil
}

// Build produces the full index: local entries in history-resolution order,
// then catalog entries when integration is enabled. now is the run-start wall
// clock recorded on catalog-sourced entries.
//
// An uncommitted candidate or an unparseable schema document fails the whole
// build; a catalog fetch failure only degrades it to local entries.
func (ix *Indexer) Build(ctx context.Context, now time.Time) (*domain.SchemaIndex, error) {
	pending, err := ix.store.Candidates(ix.dir, ix.ext)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		ix.logger.Warn("no schema documents found", "dir", ix.dir)
	}

	resolved, err := ix.store.ResolveUpdated(pending)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		missing := make([]string, 0, len(pending))
		for p := range pending {
			missing = append(missing, p)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("all schema files must be committed: %s not found in history",
			strings.Join(missing, ", "))
	}

	index := &domain.SchemaIndex{Schemas: []domain.SchemaMeta{}}
	for _, res := range resolved {
		entry, err := ix.buildEntry(res)
		if err != nil {
			return nil, err
		}
		index.Schemas = append(index.Schemas, entry)
	}
	ix.logger.Info("local entries built", "count", len(index.Schemas))

	if ix.catalog != nil && ix.integrator != nil {
		catalog, err := ix.catalog.Fetch(ctx)
		if err != nil {
			ix.logger.Warn("schema store integration failed, continuing with local entries",
				"error", err)
		} else {
			remote := ix.integrator.Integrate(catalog, now)
			index.Schemas = append(index.Schemas, remote...)
			ix.logger.Info("catalog entries integrated", "count", len(remote))
		}
	}

	return index, nil
}

// buildEntry parses one resolved schema document and constructs its entry.
// The URL joins the base URL with the file's base name, not its full path.
func (ix *Indexer) buildEntry(res gitstore.Resolution) (domain.SchemaMeta, error) {
	content, err := ix.store.ReadFile(res.Path)
	if err != nil {
		return domain.SchemaMeta{}, fmt.Errorf("failed to read %s: %w", res.Path, err)
	}

	var doc domain.SchemaDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return domain.SchemaMeta{}, fmt.Errorf("invalid schema %s: %w", res.Path, err)
	}

	url := ix.baseURL + "/" + path.Base(res.Path)
	updated := res.Updated.Format(time.RFC3339)

	return domain.SchemaMeta{
		Title:       doc.Title,
		Description: doc.Description,
		Updated:     &updated,
		URL:         url,
		URLHash:     checksum.Sum([]byte(url)),
		ExtraInfo:   doc.Extra,
	}, nil
}

// WriteFile serializes the index to out as a single JSON document.
func WriteFile(out string, index *domain.SchemaIndex) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := json.NewEncoder(f).Encode(index); err != nil {
		f.Close()
		return fmt.Errorf("failed to write index: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}
