package schemastore

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/schemaindex/generator/internal/checksum"
	"github.com/schemaindex/generator/internal/domain"
	"github.com/schemaindex/generator/internal/globre"
)

// provenance is recorded as the author of every catalog-sourced entry.
const provenance = "automatically included from https://schemastore.org"

// translationCacheSize bounds the glob translation memo. The catalog repeats
// a handful of globs ("*", "**/config") across many entries.
const translationCacheSize = 256

// Integrator converts catalog descriptors into index entries.
type Integrator struct {
	ext      string
	validate *validator.Validate
	memo     *lru.Cache[string, string]
	logger   *slog.Logger
}

// NewIntegrator creates an integrator that keeps catalog entries with at
// least one file match ending in "." + ext.
func NewIntegrator(ext string, logger *slog.Logger) (*Integrator, error) {
	if ext == "" {
		ext = "toml"
	}
	if logger == nil {
		logger = slog.Default()
	}

	memo, err := lru.New[string, string](translationCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation cache: %w", err)
	}

	return &Integrator{
		ext:      ext,
		validate: domain.NewValidator(),
		memo:     memo,
		logger:   logger,
	}, nil
}

// Integrate filters the catalog to eligible descriptors and builds one index
// entry per retained descriptor, in catalog order. now is the run-start wall
// clock; the catalog carries no update signal of its own.
//
// Per-glob translation failures drop the glob, never the entry: a descriptor
// whose globs all fail still yields an entry with no patterns.
func (g *Integrator) Integrate(catalog *domain.Catalog, now time.Time) []domain.SchemaMeta {
	suffix := "." + g.ext
	updated := now.UTC().Format(time.RFC3339)

	var entries []domain.SchemaMeta
	for _, schema := range catalog.Schemas {
		if !hasSuffixMatch(schema.FileMatch, suffix) {
			continue
		}

		if err := g.validate.Struct(&schema); err != nil {
			g.logger.Warn("skipping catalog entry", "url", schema.URL, "error", err)
			continue
		}

		var patterns []string
		for _, fm := range schema.FileMatch {
			if !strings.HasSuffix(fm, suffix) {
				continue
			}
			pattern, err := g.translate(strings.TrimSuffix(fm, suffix))
			if err != nil {
				g.logger.Warn("skipping file match", "glob", fm, "error", err)
				continue
			}
			patterns = append(patterns, pattern)
		}

		entryUpdated := updated
		entries = append(entries, domain.SchemaMeta{
			Title:       schema.Name,
			Description: schema.Description,
			Updated:     &entryUpdated,
			URL:         schema.URL,
			URLHash:     checksum.Sum([]byte(schema.URL)),
			ExtraInfo: domain.ExtraInfo{
				Authors:  []string{provenance},
				Patterns: patterns,
			},
		})
	}

	return entries
}

func (g *Integrator) translate(glob string) (string, error) {
	if pattern, ok := g.memo.Get(glob); ok {
		return pattern, nil
	}

	pattern, err := globre.Translate(glob, g.ext)
	if err != nil {
		return "", err
	}

	g.memo.Add(glob, pattern)
	return pattern, nil
}

func hasSuffixMatch(fileMatch []string, suffix string) bool {
	for _, fm := range fileMatch {
		if strings.HasSuffix(fm, suffix) {
			return true
		}
	}
	return false
}
