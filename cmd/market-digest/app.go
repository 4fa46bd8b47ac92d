package main

import (
	"github.com/pdiddy/market-digest/internal/aggregate"
	"github.com/pdiddy/market-digest/internal/analyze"
	"github.com/pdiddy/market-digest/internal/httputil"
	"github.com/pdiddy/market-digest/internal/pipeline"
	"github.com/pdiddy/market-digest/internal/provider"
	"github.com/pdiddy/market-digest/internal/store"
	"github.com/pdiddy/market-digest/pkg/types"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg      types.Config
	catalog  *provider.Catalog
	sources  provider.Set
	pipeline *pipeline.Pipeline
}

// loadCatalog returns the configured source table, or the built-in one.
func loadCatalog(cfg types.Config) (*provider.Catalog, error) {
	if cfg.Providers.SourcesFile != "" {
		return provider.LoadCatalog(cfg.Providers.SourcesFile)
	}
	return provider.DefaultCatalog()
}

// newApp wires fetcher, providers, aggregator, analyzer and pipeline.
func newApp(cfg types.Config) (*app, error) {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := httputil.NewFetcher(cfg.HTTP)
	sources := provider.Build(catalog, cfg.Providers, fetcher, log)
	agg := aggregate.New(sources, catalog, cfg.Aggregate, log)
	p := pipeline.New(agg, analyze.New(log), cfg, log)

	return &app{cfg: cfg, catalog: catalog, sources: sources, pipeline: p}, nil
}

// openStore opens the run-history database.
func openStore(cfg types.Config) (*store.Store, error) {
	return store.NewStore(cfg.Store)
}

// openConfiguredStore loads the config and opens the store.
func openConfiguredStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openStore(cfg)
}
