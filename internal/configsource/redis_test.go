// SPDX-License-Identifier: MIT

package configsource

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/mapview/internal/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedis(client, "mapview:config")
}

func TestRedis_LoadMissingKey(t *testing.T) {
	_, src := setupMiniRedis(t)

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedis_PublishLoadRoundTrip(t *testing.T) {
	mr, src := setupMiniRedis(t)
	ctx := context.Background()

	want, err := config.New("pk.redis", config.Default().Gazetteer(), config.Default().StylePresets())
	require.NoError(t, err)
	require.NoError(t, src.Publish(ctx, want))

	assert.True(t, mr.Exists("mapview:config"))

	got, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, config.Diff(want, got))
	assert.Equal(t, "pk.redis", got.AccessToken())
}

func TestRedis_LoadRejectsInvalidSnapshot(t *testing.T) {
	tests := map[string]string{
		"not json":      `{`,
		"unknown field": `{"accessToken":"","gazetteer":{},"stylePresets":[],"extra":1}`,
		"duplicate ids": `{"accessToken":"","gazetteer":{},"stylePresets":[` +
			`{"id":"a","name":"A","type":"t","renderer":"maplibre-gl","url":"a.json"},` +
			`{"id":"a","name":"B","type":"t","renderer":"maplibre-gl","url":"b.json"}]}`,
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			mr, src := setupMiniRedis(t)
			require.NoError(t, mr.Set("mapview:config", payload))

			_, err := src.Load(context.Background())
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRedis_LoadAppliesEnvOverlay(t *testing.T) {
	mr, src := setupMiniRedis(t)
	ctx := context.Background()

	published, err := config.New("pk.redis", config.Default().Gazetteer(), config.Default().StylePresets())
	require.NoError(t, err)
	require.NoError(t, src.Publish(ctx, published))

	t.Setenv(config.EnvAccessToken, "pk.env")
	got, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pk.env", got.AccessToken())

	// Lenient mode serves a snapshot that strict mode rejects.
	require.NoError(t, mr.Set("mapview:config", `{"accessToken":"","gazetteer":{},"stylePresets":[`+
		`{"id":"a","name":"A","type":"t","renderer":"maplibre-gl","url":"a.json"},`+
		`{"id":"a","name":"B","type":"t","renderer":"maplibre-gl","url":"b.json"}]}`))
	t.Setenv(config.EnvConfigStrict, "false")
	got, err = src.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.StylePresets(), 2)
	assert.False(t, got.Strict())
}

func TestRedis_LoadFailsWhenServerDown(t *testing.T) {
	mr, src := setupMiniRedis(t)
	mr.Close()

	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedis_WatchDeliversPublishedSnapshots(t *testing.T) {
	_, src := setupMiniRedis(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *config.Config, 1)
	require.NoError(t, src.Watch(ctx, func(cfg *config.Config) { got <- cfg }))

	want, err := config.New("pk.watched", config.Default().Gazetteer(), nil)
	require.NoError(t, err)
	require.NoError(t, src.Publish(context.Background(), want))

	select {
	case cfg := <-got:
		assert.Equal(t, "pk.watched", cfg.AccessToken())
		assert.Empty(t, cfg.StylePresets())
	case <-time.After(3 * time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestRedis_FeedsHolder(t *testing.T) {
	_, src := setupMiniRedis(t)
	ctx := context.Background()

	next, err := config.New("pk.holder", config.Default().Gazetteer(), config.Default().StylePresets())
	require.NoError(t, err)
	require.NoError(t, src.Publish(ctx, next))

	h := config.NewHolder(config.Default(), src, "")
	require.NoError(t, h.Reload(ctx))
	assert.Equal(t, "pk.holder", h.Get().AccessToken())
}
