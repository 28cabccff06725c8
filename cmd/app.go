package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/conneroisu/uiforge/internal/config"
	"github.com/conneroisu/uiforge/internal/generator"
	"github.com/conneroisu/uiforge/internal/kv"
	"github.com/conneroisu/uiforge/internal/logging"
	"github.com/conneroisu/uiforge/internal/orchestrator"
	"github.com/conneroisu/uiforge/internal/registry"
	"github.com/conneroisu/uiforge/internal/workspace"
)

// app bundles everything a command needs to act on the workspace.
type app struct {
	cfg    *config.Config
	logger *logging.ForgeLogger
	store  kv.Store
	orch   *orchestrator.Orchestrator
}

func newLogger(cfg *config.Config) *logging.ForgeLogger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}

// openApp loads configuration, opens the configured store, restores the
// persisted workspace and builds the orchestrator around the configured
// generation backend.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	store, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}

	client, err := generator.New(cfg.Generator, registry.Default().Names(), logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	ws, snap := workspace.Open(ctx, store, cfg.Storage.Namespace, logger)
	orch := orchestrator.New(client,
		orchestrator.WithWorkspace(ws),
		orchestrator.WithSnapshot(snap),
		orchestrator.WithTimeout(cfg.Generator.Timeout),
		orchestrator.WithLogger(logger),
	)

	return &app{cfg: cfg, logger: logger, store: store, orch: orch}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// truncate shortens s to n runes for single-line listings.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}
