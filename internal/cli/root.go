// Package cli wires the symsync commands: reconciliation runs, the interval
// scheduler, unused-ticker reporting, explicit lifecycle operations, and
// schema migrations.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkrause/symsync/internal/config"
	"github.com/tkrause/symsync/internal/engine"
	"github.com/tkrause/symsync/internal/source"
	"github.com/tkrause/symsync/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "symsync",
	Short:         "Reconcile company/ticker listings into a temporal store",
	Long:          "symsync ingests company listings from configured providers, reconciles them\nagainst the store, and maintains the full history of ticker-symbol assignment.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/symsync.yaml", "path to config file")
}

// newLogger sets up structured logging for a command invocation.
func newLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// buildSources assembles the configured providers in config order, which
// fixes first-seen-wins precedence for cross-source duplicates.
func buildSources(cfg *config.Config, logger *slog.Logger) []source.Source {
	var sources []source.Source
	if cfg.Sources.Finnhub.Enabled {
		sources = append(sources, source.NewFinnhub(cfg.Sources.Finnhub, logger))
	}
	for _, sc := range cfg.Sources.Screeners {
		sources = append(sources, source.NewScreenerFile(sc.Name, sc.Path, logger))
	}
	return sources
}

// app bundles everything a command needs after setup.
type app struct {
	cfg    *config.Config
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

func (a *app) close() {
	a.store.Close()
}

// setup loads configuration, connects the store, and composes the engine.
func setup(ctx context.Context) (*app, error) {
	logger := newLogger()

	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return nil, err
	}
	logger = logger.With("instance", cfg.Instance.ID)

	st, err := store.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}

	engCfg := engine.Config{
		FetchConcurrency: cfg.Sync.FetchConcurrency,
		FetchTimeout:     cfg.Sync.FetchTimeout,
	}
	if cfg.Sync.RunDate != "" {
		// Validated on load; parse cannot fail here.
		engCfg.RunDate, _ = time.Parse("2006-01-02", cfg.Sync.RunDate)
	}

	eng := engine.New(engCfg, buildSources(cfg, logger), st, logger)
	return &app{cfg: cfg, store: st, engine: eng, logger: logger}, nil
}

// parseDate parses a --date flag, defaulting to today (UTC).
func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}
