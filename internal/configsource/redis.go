// SPDX-License-Identifier: MIT

// Package configsource loads configuration snapshots from sources other than
// the local YAML file.
package configsource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/mapview/internal/config"
	xglog "github.com/ManuGH/mapview/internal/log"
	"github.com/ManuGH/mapview/internal/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const sourceRedis = "redis"

// ErrNotFound is returned by Load when the key holds no snapshot.
var ErrNotFound = errors.New("config snapshot not found")

// RedisOptions holds Redis connection configuration.
type RedisOptions struct {
	Addr     string // host:port
	Password string // optional
	DB       int
}

// Dial connects to Redis and verifies the connection with PING.
func Dial(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// Redis stores the JSON snapshot under one key and announces changes on
// "<key>:updates".
type Redis struct {
	client *redis.Client
	key    string
	logger zerolog.Logger
}

// NewRedis returns a source reading and publishing key.
func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{
		client: client,
		key:    key,
		logger: xglog.WithComponent("configsource").With().Str(xglog.FieldSource, sourceRedis).Str("key", key).Logger(),
	}
}

// Key returns the snapshot key.
func (r *Redis) Key() string { return r.key }

// UpdatesChannel returns the pub/sub channel carrying change notifications.
func (r *Redis) UpdatesChannel() string { return r.key + ":updates" }

// Load fetches the snapshot and applies the MAPVIEW_* overlay to it.
func (r *Redis) Load(ctx context.Context) (*config.Config, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: key %q", ErrNotFound, r.key)
	}
	if err != nil {
		metrics.RecordSourceError(sourceRedis, "load")
		return nil, fmt.Errorf("redis get %q: %w", r.key, err)
	}

	cfg, err := config.ParseJSONWithEnv(data)
	if err != nil {
		metrics.RecordSourceError(sourceRedis, "load")
		return nil, fmt.Errorf("redis key %q: %w", r.key, err)
	}
	return cfg, nil
}

// Publish stores cfg and notifies subscribers.
func (r *Redis) Publish(ctx context.Context, cfg *config.Config) error {
	data, err := cfg.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key, data, 0)
		pipe.Publish(ctx, r.UpdatesChannel(), r.key)
		return nil
	})
	if err != nil {
		metrics.RecordSourceError(sourceRedis, "publish")
		return fmt.Errorf("redis publish %q: %w", r.key, err)
	}

	r.logger.Info().
		Str(xglog.FieldEvent, "configsource.published").
		Int("bytes", len(data)).
		Msg("published config snapshot")
	return nil
}

// Watch calls fn with every snapshot announced on the updates channel until
// ctx is done. Snapshots that fail to load are logged and skipped. The
// subscription is established before Watch returns.
func (r *Redis) Watch(ctx context.Context, fn func(*config.Config)) error {
	pubsub := r.client.Subscribe(ctx, r.UpdatesChannel())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		metrics.RecordSourceError(sourceRedis, "watch")
		return fmt.Errorf("subscribe %q: %w", r.UpdatesChannel(), err)
	}

	r.logger.Info().
		Str(xglog.FieldEvent, "configsource.watch_started").
		Str("channel", r.UpdatesChannel()).
		Msg("watching redis for config updates")

	go func() {
		defer func() { _ = pubsub.Close() }()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				r.logger.Info().Str(xglog.FieldEvent, "configsource.watch_stopped").Msg("redis watch stopped")
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				cfg, err := r.Load(ctx)
				if err != nil {
					r.logger.Error().
						Err(err).
						Str(xglog.FieldEvent, "configsource.load_failed").
						Msg("ignoring announced config snapshot")
					continue
				}
				fn(cfg)
			}
		}
	}()
	return nil
}
