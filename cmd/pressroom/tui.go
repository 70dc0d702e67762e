package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/pressroom/internal/aggregate"
	"github.com/abelbrown/pressroom/internal/config"
	"github.com/abelbrown/pressroom/internal/logging"
	"github.com/abelbrown/pressroom/internal/otel"
	"github.com/abelbrown/pressroom/internal/route"
	"github.com/abelbrown/pressroom/internal/ui"
	"github.com/abelbrown/pressroom/internal/wp"
)

func runTUI(cmd *cobra.Command, args []string) error {
	start, err := route.Parse(flagRoute)
	if err != nil {
		return fmt.Errorf("--route: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stateDir := config.StateDir()
	if err := logging.Init(stateDir, version); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not initialize logging: %v\n", err)
	}
	defer logging.Close()

	events, eventsFile, err := otel.OpenFile(filepath.Join(stateDir, "events.jsonl"))
	if err != nil {
		logging.Warn("event log unavailable", "err", err)
		events = otel.NewNullLogger()
	} else {
		defer eventsFile.Close()
	}
	defer events.Close()

	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)
	events.Info(otel.KindStartup, "main", version)
	defer events.Info(otel.KindShutdown, "main", "")

	s := newStack(cfg, events)
	logging.Info("content stack ready", "base_url", cfg.BaseURL, "cache_ttl", cfg.CacheTTL())

	var program *tea.Program
	app := ui.NewAppWithConfig(ui.AppConfig{
		Refresh: s.engine.Refresh,
		Latest: func(ctx context.Context) (aggregate.Feed, error) {
			return s.engine.Latest(ctx, cfg.UI.PostsPerPage)
		},
		Category:   s.engine.Category,
		Post:       s.engine.Post,
		Page:       s.client.PageBySlug,
		Search:     s.client.Search,
		Nav:        s.nav,
		Invalidate: s.engine.Invalidate,
		Send: func(msg tea.Msg) {
			if program != nil {
				program.Send(msg)
			}
		},
		Obs:          ui.ObsConfig{Ring: ring, Logger: events},
		SearchMinLen: cfg.UI.SearchMinLen,
		Start:        start,
	})

	program = tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		events.Error(otel.KindError, "main", err)
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// compile-time check that the client satisfies the engine's source.
var _ aggregate.Source = (*wp.Client)(nil)
