package main

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/pressroom/internal/aggregate"
	"github.com/abelbrown/pressroom/internal/cache"
	"github.com/abelbrown/pressroom/internal/config"
	"github.com/abelbrown/pressroom/internal/media"
	"github.com/abelbrown/pressroom/internal/otel"
	"github.com/abelbrown/pressroom/internal/wp"
)

// stack is the per-session set of content components.
type stack struct {
	cfg      *config.Config
	client   *wp.Client
	store    *cache.Store
	resolver *media.Resolver
	engine   *aggregate.Engine
}

// loadConfig reads the config file and applies the --base-url flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newStack wires the client, session cache, media resolver and engine.
func newStack(cfg *config.Config, events *otel.Logger) *stack {
	client := wp.NewClient(cfg.BaseURL, cfg.Timeout(),
		wp.WithRateLimit(cfg.RequestsPerSecond),
		wp.WithLogger(events),
	)
	store := cache.New(cfg.CacheTTL())
	resolver := media.NewResolver(client, store,
		media.WithBatchSize(cfg.Media.BatchSize),
		media.WithConcurrency(cfg.Aggregation.Concurrency),
		media.WithFallback(cfg.Media.FallbackURL),
		media.WithLogger(events),
	)
	engine := aggregate.NewEngine(client, store, resolver, aggregate.Config{
		MaxCategories: cfg.Aggregation.MaxCategories,
		Concurrency:   cfg.Aggregation.Concurrency,
		DisplayCounts: cfg.Aggregation.DisplayCounts,
	}, events)
	return &stack{
		cfg:      cfg,
		client:   client,
		store:    store,
		resolver: resolver,
		engine:   engine,
	}
}

// nav loads the menu tree and a site label for the navbar. A missing logo
// is not an error.
func (s *stack) nav(ctx context.Context) ([]wp.MenuEntry, string, error) {
	var (
		items []wp.MenuItem
		logos []wp.Logo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.client.Menu(gctx)
		return err
	})
	g.Go(func() error {
		logos, _ = s.client.Logo(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}
	return wp.MenuTree(items), siteLabel(s.cfg.BaseURL, logos), nil
}

// siteLabel names the site after the API host; a "▣" marks an available logo.
func siteLabel(baseURL string, logos []wp.Logo) string {
	label := "pressroom"
	if u, err := url.Parse(baseURL); err == nil && u.Hostname() != "" {
		label = u.Hostname()
	}
	for _, l := range logos {
		if l.URL != "" {
			return label + " ▣"
		}
	}
	return label
}
