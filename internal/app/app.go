// Package app wires configuration into the catalog, storage and services
// shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"

	"phonefinder/internal/catalog"
	"phonefinder/internal/config"
	"phonefinder/internal/logging"
	"phonefinder/internal/metrics"
	"phonefinder/internal/repository"
	"phonefinder/internal/service"
)

// App holds the long-lived components of one process
type App struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Repo    *repository.Repository // nil when no database is configured
	Service *service.RecommendService
}

// New opens storage, loads the catalog and builds the recommendation service
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.Component("app")

	repo, err := OpenRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cat, err := LoadCatalog(ctx, cfg, repo)
	if err != nil {
		if repo != nil {
			repo.Close()
		}
		return nil, err
	}
	metrics.SetCatalogSize(cat.Len())

	var store service.RecommendationLogger
	if repo != nil && cfg.Recommend.LogRecommendations {
		store = repo
	}

	svc := service.NewRecommendService(cat, NewIntentParser(cfg), store, service.Options{
		Params:      cfg.LadderParams(),
		DefaultTopN: cfg.Recommend.DefaultTopN,
		MaxTopN:     cfg.Recommend.MaxTopN,
	})

	logger.Info().
		Str("source", cfg.Catalog.Source).
		Int("phones", cat.Len()).
		Bool("database", repo != nil).
		Bool("llm", cfg.Extractor.UseLLM).
		Msg("application initialized")

	return &App{
		Config:  cfg,
		Catalog: cat,
		Repo:    repo,
		Service: svc,
	}, nil
}

// Close flushes pending recommendation logs and closes the database
func (a *App) Close() error {
	a.Service.Wait()
	if a.Repo == nil {
		return nil
	}
	return a.Repo.Close()
}

// OpenRepository connects and migrates the configured database.
// It returns nil without error when no database is configured.
func OpenRepository(ctx context.Context, cfg *config.Config) (*repository.Repository, error) {
	driver := cfg.DatabaseDriver()
	if driver == "" {
		return nil, nil
	}

	repo, err := repository.New(driver, cfg.DatabaseDSN(), cfg.Database.MaxConnections, cfg.Database.MaxIdleConnections)
	if err != nil {
		return nil, err
	}
	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

// LoadCatalog reads the catalog from the configured source
func LoadCatalog(ctx context.Context, cfg *config.Config, repo *repository.Repository) (*catalog.Catalog, error) {
	switch cfg.Catalog.Source {
	case config.SourceCSV:
		return LoadCSVCatalog(cfg.Catalog.CSVPath, cfg)
	case config.SourcePostgres, config.SourceSQLite:
		if repo == nil {
			return nil, fmt.Errorf("catalog source %s needs a database", cfg.Catalog.Source)
		}
		phones, err := repo.LoadPhones(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.New(phones), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

// LoadCSVCatalog reads a CSV catalog with the configured load options
func LoadCSVCatalog(path string, cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.LoadFile(path, catalog.LoadOptions{EstimateMissingPrices: cfg.Catalog.EstimatePrices})
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return cat, nil
}

// NewIntentParser builds the extractor chain: the LLM first when enabled, then rules
func NewIntentParser(cfg *config.Config) *service.IntentParser {
	extractors := []service.Extractor{}
	if cfg.Extractor.UseLLM {
		extractors = append(extractors, service.NewOpenAIClient(&cfg.Extractor))
	}
	extractors = append(extractors, service.NewRuleExtractor())
	return service.NewIntentParser(extractors...)
}

// Import writes every phone of cat into the repository
func Import(ctx context.Context, repo *repository.Repository, cat *catalog.Catalog) (int, error) {
	if repo == nil {
		return 0, fmt.Errorf("no database configured")
	}
	return repo.UpsertPhones(ctx, cat.Phones())
}
