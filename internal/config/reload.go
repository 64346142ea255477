// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	xglog "github.com/ManuGH/mapview/internal/log"
	"github.com/ManuGH/mapview/internal/metrics"
	"github.com/ManuGH/mapview/internal/telemetry"
	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	defaultReloadEvery = 2 * time.Second
	defaultReloadBurst = 5
	watchDebounce      = 500 * time.Millisecond
)

// Holder holds the current snapshot and swaps it atomically on reload.
// Snapshots are immutable, so Get hands out the pointer itself.
type Holder struct {
	mu         sync.RWMutex
	current    *Config
	source     Source
	configPath string
	watcher    *fsnotify.Watcher
	limiter    *rate.Limiter
	logger     zerolog.Logger

	// Reload notifications
	reloadMu        sync.RWMutex
	reloadListeners []chan<- *Config
}

// HolderOption customises a Holder.
type HolderOption func(*Holder)

// WithReloadLimit caps how often Reload may run.
func WithReloadLimit(every rate.Limit, burst int) HolderOption {
	return func(h *Holder) {
		h.limiter = rate.NewLimiter(every, burst)
	}
}

// NewHolder creates a holder with an initial snapshot. configPath is the file
// watched by StartWatcher; it may be empty when source is not file based.
func NewHolder(initial *Config, source Source, configPath string, opts ...HolderOption) *Holder {
	h := &Holder{
		current:    initial,
		source:     source,
		configPath: configPath,
		limiter:    rate.NewLimiter(rate.Every(defaultReloadEvery), defaultReloadBurst),
		logger:     xglog.WithComponent("config"),
	}
	for _, opt := range opts {
		opt(h)
	}
	metrics.SetConfigSnapshot(len(initial.stylePresets), initial.gazetteer.Len(), initial.gazetteer.NumLocations())
	return h
}

// Get returns the current snapshot.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload loads a new snapshot from the source.
// If loading or validation fails, the old snapshot is kept and an error is
// returned.
func (h *Holder) Reload(ctx context.Context) error {
	ctx, span := telemetry.Tracer("mapview/config").Start(ctx, "config.reload")
	defer span.End()
	span.SetAttributes(telemetry.ConfigSourceAttributes(h.sourceKind(), h.configPath)...)

	if !h.limiter.Allow() {
		metrics.RecordConfigReload(metrics.ReloadThrottled)
		span.SetAttributes(telemetry.OutcomeAttribute(metrics.ReloadThrottled))
		return ErrReloadThrottled
	}

	h.logger.Info().Str(xglog.FieldEvent, "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.source.Load(ctx)
	if err != nil {
		metrics.RecordConfigReload(metrics.ReloadFailed)
		span.SetAttributes(telemetry.OutcomeAttribute(metrics.ReloadFailed))
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		h.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.current
	h.current = newCfg
	h.mu.Unlock()

	metrics.RecordConfigReload(metrics.ReloadSucceeded)
	metrics.SetConfigSnapshot(len(newCfg.stylePresets), newCfg.gazetteer.Len(), newCfg.gazetteer.NumLocations())
	span.SetAttributes(telemetry.OutcomeAttribute(metrics.ReloadSucceeded))
	span.SetAttributes(telemetry.ConfigSnapshotAttributes(len(newCfg.stylePresets), newCfg.gazetteer.Len(), newCfg.gazetteer.NumLocations())...)

	h.notifyListeners(newCfg)
	h.logChanges(oldCfg, newCfg)

	h.logger.Info().
		Str(xglog.FieldEvent, "config.reload_success").
		Msg("configuration reloaded successfully")

	return nil
}

func (h *Holder) sourceKind() string {
	if h.configPath != "" {
		return "file"
	}
	return "remote"
}

// Set replaces the snapshot directly, for sources that push updates.
func (h *Holder) Set(cfg *Config) {
	h.mu.Lock()
	oldCfg := h.current
	h.current = cfg
	h.mu.Unlock()

	metrics.SetConfigSnapshot(len(cfg.stylePresets), cfg.gazetteer.Len(), cfg.gazetteer.NumLocations())
	h.notifyListeners(cfg)
	h.logChanges(oldCfg, cfg)
}

// StartWatcher starts watching the config file for changes.
// If configPath is empty, this is a no-op.
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str(xglog.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (no config file)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Editors replace files by rename; watching the directory survives that.
	if err := watcher.Add(filepath.Dir(h.configPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}
	h.watcher = watcher

	h.logger.Info().
		Str(xglog.FieldEvent, "config.watcher_started").
		Str(xglog.FieldConfigPath, h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx, watcher)

	return nil
}

func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	target := filepath.Clean(h.configPath)

	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(xglog.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			_ = watcher.Close()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			h.logger.Debug().
				Str(xglog.FieldEvent, "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				if err := h.Reload(ctx); err != nil {
					h.logger.Error().
						Err(err).
						Str(xglog.FieldEvent, "config.auto_reload_failed").
						Msg("automatic config reload failed")
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Stop stops the config watcher (if running).
func (h *Holder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}

// RegisterListener registers a channel to receive reloaded snapshots.
// The caller is responsible for closing the channel.
func (h *Holder) RegisterListener(ch chan<- *Config) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

// notifyListeners sends the new config to all registered listeners (non-blocking).
func (h *Holder) notifyListeners(newCfg *Config) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().
				Str(xglog.FieldEvent, "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// changeView is the comparable, token-free projection used for change logs.
type changeView struct {
	AccessTokenSet bool
	Groups         []Group
	StylePresets   []StylePreset
	LogLevel       string
	Strict         bool
}

func viewOf(c *Config) changeView {
	return changeView{
		AccessTokenSet: c.accessToken != "",
		Groups:         c.gazetteer.groups,
		StylePresets:   c.stylePresets,
		LogLevel:       c.logLevel,
		Strict:         c.strict,
	}
}

// Diff returns a human-readable diff between two snapshots, or "" when equal.
// The access token value is never included.
func Diff(old, next *Config) string {
	tokenChanged := old.accessToken != next.accessToken
	d := cmp.Diff(viewOf(old), viewOf(next))
	if tokenChanged && d == "" {
		return "access token changed"
	}
	if tokenChanged {
		d = "access token changed\n" + d
	}
	return d
}

func (h *Holder) logChanges(old, newCfg *Config) {
	d := Diff(old, newCfg)
	if d == "" {
		h.logger.Debug().Str(xglog.FieldEvent, "config.unchanged").Msg("reloaded configuration is identical")
		return
	}
	h.logger.Info().
		Str(xglog.FieldEvent, "config.changed").
		Int("style_presets", len(newCfg.stylePresets)).
		Int("groups", newCfg.gazetteer.Len()).
		Bool("gazetteer_changed", !old.gazetteer.Equal(newCfg.gazetteer)).
		Str("diff", d).
		Msg("configuration changed")
}
