// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ManuGH/mapview/internal/config"
	"github.com/ManuGH/mapview/internal/configsource"
	"github.com/ManuGH/mapview/internal/log"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthcheckCLI(t *testing.T) {
	ready := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/readyz" && !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	addr := strings.TrimPrefix(srv.URL, "http://")

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, runHealthcheckCLI([]string{"-addr", addr}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "successful (ready)")

	ready = false
	stdout.Reset()
	assert.Equal(t, 1, runHealthcheckCLI([]string{"-addr", addr}, &stdout, &stderr))
	assert.Equal(t, 0, runHealthcheckCLI([]string{"-addr", addr, "-mode", "live"}, &stdout, &stderr))
}

func TestRun_VersionAndBadFlags(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"-version"}, &stderr))
	assert.Contains(t, stderr.String(), "commit")

	assert.Equal(t, 2, run([]string{"-no-such-flag"}, &stderr))
}

func TestRun_InvalidConfigFails(t *testing.T) {
	var stderr bytes.Buffer
	code := run([]string{"-env-file", "does-not-exist.env", "-config", "../../internal/config/testdata/invalid-unknown-key.yaml"}, &stderr)
	assert.Equal(t, 1, code)
}

func TestBootstrap_File(t *testing.T) {
	rt, err := bootstrap(context.Background(), "../../internal/config/testdata/valid.yaml", log.WithComponent("test"))
	require.NoError(t, err)
	assert.Nil(t, rt.redis)
	assert.Nil(t, rt.remote)
	assert.Equal(t, 2, rt.holder.Get().Gazetteer().Len())
}

func TestBootstrap_RedisSeedsEmptyKey(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv(config.EnvRedisAddr, mr.Addr())
	t.Setenv(config.EnvRedisKey, "test:config")

	rt, err := bootstrap(context.Background(), "../../internal/config/testdata/valid-minimal.yaml", log.WithComponent("test"))
	require.NoError(t, err)
	defer func() { _ = rt.redis.Close() }()

	assert.True(t, mr.Exists("test:config"))
	assert.Equal(t, "pk.test-token", rt.holder.Get().AccessToken())
	assert.NotNil(t, rt.remote)
}

func TestBootstrap_RedisWinsOverFile(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv(config.EnvRedisAddr, mr.Addr())
	t.Setenv(config.EnvRedisKey, "test:config")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	stored, err := config.New("pk.from-redis", config.Default().Gazetteer(), nil)
	require.NoError(t, err)
	require.NoError(t, configsource.NewRedis(client, "test:config").Publish(context.Background(), stored))

	rt, err := bootstrap(context.Background(), "../../internal/config/testdata/valid-minimal.yaml", log.WithComponent("test"))
	require.NoError(t, err)
	defer func() { _ = rt.redis.Close() }()

	assert.Equal(t, "pk.from-redis", rt.holder.Get().AccessToken())
}

func TestTracingConfig(t *testing.T) {
	t.Setenv(config.EnvOTelEndpoint, "")
	assert.False(t, tracingConfig().Enabled)

	t.Setenv(config.EnvOTelEndpoint, "collector:4317")
	t.Setenv(config.EnvOTelExporter, "grpc")
	t.Setenv(config.EnvOTelSampleRate, "0.1")
	cfg := tracingConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "grpc", cfg.Exporter)
	assert.Equal(t, "collector:4317", cfg.Endpoint)
	assert.InDelta(t, 0.1, cfg.SamplingRate, 1e-9)
}
