// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/mapview/internal/config"
	xglog "github.com/ManuGH/mapview/internal/log"
	"github.com/rs/zerolog"
)

// Watcher pushes configuration snapshots from a remote source.
type Watcher interface {
	Watch(ctx context.Context, fn func(*config.Config)) error
}

// App owns the long-lived runtime lifecycle (file watcher, remote watch,
// reload signal) and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	holder       *config.Holder
	remote       Watcher
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. holder and remote may be nil.
func NewApp(logger zerolog.Logger, manager Manager, holder *config.Holder, remote Watcher) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		holder:       holder,
		remote:       remote,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	// Every applied snapshot, reloaded or pushed, is announced and linted.
	if a.holder != nil {
		applied := make(chan *config.Config, 1)
		a.holder.RegisterListener(applied)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applied:
					a.logApplied(cfg)
				}
			}
		})
	}

	// Config watcher is best-effort: startup should not fail if watcher cannot be started.
	if a.holder != nil {
		if err := a.holder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.watcher_start_failed").Msg("failed to start config watcher")
		}
	}

	if a.holder != nil && a.remote != nil {
		if err := a.remote.Watch(ctx, a.holder.Set); err != nil {
			a.logger.Warn().Err(err).Str(xglog.FieldEvent, "configsource.watch_start_failed").Msg("failed to watch remote config")
		}
	}

	// SIGHUP trigger for manual reload.
	if a.holder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str(xglog.FieldEvent, "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")

					if err := a.holder.Reload(ctx); err != nil {
						a.logger.Warn().
							Err(err).
							Str(xglog.FieldEvent, "config.reload_failed").
							Msg("config reload failed")
					}
				}
			}
		})
	}

	// Main server lifecycle.
	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	err := g.Wait()
	if a.holder != nil {
		a.holder.Stop()
	}
	return err
}

func (a *App) logApplied(cfg *config.Config) {
	gz := cfg.Gazetteer()
	a.logger.Info().
		Str(xglog.FieldEvent, "config.applied").
		Int("groups", gz.Len()).
		Int("locations", gz.NumLocations()).
		Int("style_presets", len(cfg.StylePresets())).
		Msg("configuration snapshot applied")
	for _, e := range config.Lint(cfg) {
		a.logger.Warn().
			Str(xglog.FieldEvent, "config.lint").
			Str("field", e.Field).
			Msg(e.Message)
	}
}
