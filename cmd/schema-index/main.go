package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/schemaindex/generator/internal/config"
	"github.com/schemaindex/generator/internal/gitstore"
	"github.com/schemaindex/generator/internal/indexer"
	"github.com/schemaindex/generator/internal/schemastore"
)

func main() {
	// Logs go to stderr; the index itself is the tool's only stdout-adjacent
	// product and is written to a file.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cmd := &cli.Command{
		Name:      "schema-index",
		Usage:     "Generate a JSON index of schema documents tracked in a git repository",
		ArgsUsage: "DIR",
		Action:    run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "git",
				Usage:       "Git repository",
				DefaultText: ".",
				Sources:     cli.EnvVars("SCHEMA_INDEX_GIT"),
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "Output JSON file",
				DefaultText: "schema_index.json",
			},
			&cli.StringFlag{
				Name:        "url",
				Usage:       "Base URL of the schemas",
				DefaultText: config.DefaultBaseURL,
			},
			&cli.BoolFlag{
				Name:  "schema-store",
				Usage: "Include toml-compatible schemas from schemastore.org",
			},
			&cli.StringFlag{
				Name:        "catalog-url",
				Usage:       "Override the schema store catalog endpoint",
				DefaultText: schemastore.DefaultCatalogURL,
			},
			&cli.DurationFlag{
				Name:        "fetch-timeout",
				Usage:       "Timeout for the catalog fetch",
				DefaultText: "30s",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to optional config file",
				Sources: cli.EnvVars("SCHEMA_INDEX_CONFIG"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("schema index generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewDefault()

	if path := cmd.String("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Flags override the config file when set.
	if cmd.IsSet("git") {
		cfg.Git = cmd.String("git")
	}
	if cmd.IsSet("out") {
		cfg.Out = cmd.String("out")
	}
	if cmd.IsSet("url") {
		cfg.BaseURL = cmd.String("url")
	}
	if cmd.IsSet("schema-store") {
		cfg.SchemaStore = cmd.Bool("schema-store")
	}
	if cmd.IsSet("catalog-url") {
		cfg.CatalogURL = cmd.String("catalog-url")
	}
	if cmd.IsSet("fetch-timeout") {
		cfg.FetchTimeout = cmd.Duration("fetch-timeout")
	}
	if args := cmd.Args(); args.Len() > 0 {
		cfg.Dir = args.First()
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.Default()
	logger.Info("generating schema index",
		"git", cfg.Git,
		"dir", cfg.Dir,
		"out", cfg.Out,
		"schema_store", cfg.SchemaStore,
	)

	store, err := gitstore.Open(gitstore.Config{
		Path:   cfg.Git,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	var catalog *schemastore.Client
	var integrator *schemastore.Integrator
	if cfg.SchemaStore {
		catalog = schemastore.NewClient(schemastore.ClientConfig{
			CatalogURL: cfg.CatalogURL,
			Timeout:    cfg.FetchTimeout,
			Logger:     logger,
		})
		integrator, err = schemastore.NewIntegrator(cfg.CatalogExtension, logger)
		if err != nil {
			return err
		}
	}

	ix, err := indexer.New(indexer.Config{
		Store:      store,
		BaseURL:    cfg.BaseURL,
		Dir:        cfg.Dir,
		Extension:  cfg.Extension,
		Catalog:    catalog,
		Integrator: integrator,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	index, err := ix.Build(ctx, time.Now())
	if err != nil {
		return err
	}

	if err := indexer.WriteFile(cfg.Out, index); err != nil {
		return err
	}

	logger.Info("schema index written", "out", cfg.Out, "entries", len(index.Schemas))
	return nil
}
