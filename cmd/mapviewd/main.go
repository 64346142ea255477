// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// mapviewd serves map viewer configuration (gazetteer, style presets and
// renderer access token) over HTTP with hot reload.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/mapview/internal/api"
	"github.com/ManuGH/mapview/internal/config"
	"github.com/ManuGH/mapview/internal/configsource"
	"github.com/ManuGH/mapview/internal/daemon"
	"github.com/ManuGH/mapview/internal/health"
	xglog "github.com/ManuGH/mapview/internal/log"
	"github.com/ManuGH/mapview/internal/telemetry"
	"github.com/ManuGH/mapview/internal/version"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultListenAddr = ":8080"
	defaultRedisKey   = "mapview:config"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(runHealthcheckCLI(os.Args[2:], os.Stdout, os.Stderr))
	}
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("mapviewd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "print version and exit")
	configPath := fs.String("config", "", "path to config file (YAML); overrides "+config.EnvConfigPath)
	listen := fs.String("listen", "", "listen address; overrides "+config.EnvListenAddr)
	envFile := fs.String("env-file", ".env", "dotenv file loaded before reading the environment (optional)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stderr, version.String())
		return 0
	}

	// Variables already present in the environment win over the dotenv file.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "mapviewd: load %s: %v\n", *envFile, err)
		return 1
	}

	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Service: "mapview",
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := strings.TrimSpace(*configPath)
	if path == "" {
		path = strings.TrimSpace(config.ParseString(config.EnvConfigPath, ""))
	}
	listenAddr := strings.TrimSpace(*listen)
	if listenAddr == "" {
		listenAddr = config.ParseString(config.EnvListenAddr, defaultListenAddr)
	}

	rt, err := bootstrap(ctx, path, logger)
	if err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str(xglog.FieldConfigPath, path).
			Msg("failed to load configuration")
		return 1
	}

	// Re-configure logger with loaded configuration
	xglog.Configure(xglog.Config{
		Level:   rt.holder.Get().LogLevel(),
		Service: "mapview",
		Version: version.Version,
	})
	logger = xglog.WithComponent("daemon")

	tracing, err := telemetry.NewProvider(ctx, tracingConfig())
	if err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "telemetry.init_failed").Msg("failed to initialise tracing")
		return 1
	}

	hm := health.NewManager(version.Version)
	hm.RegisterChecker(health.NewConfigChecker(rt.holder.Get))
	if rt.redis != nil {
		client := rt.redis
		hm.RegisterChecker(health.NewFuncChecker("redis", health.StatusDegraded, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	} else {
		hm.RegisterChecker(health.NewFileChecker("config_file", path))
	}

	srv, err := api.New(api.Config{
		AllowedOrigins: config.ParseStringList(config.EnvAllowedOrigins, nil),
		ServiceName:    "mapview",
		MetricsHandler: promhttp.Handler(),
	}, api.Deps{
		Snapshots: rt.holder,
		Reloader:  rt.holder,
		Health:    hm,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to build API server")
		return 1
	}

	mgr, err := daemon.NewManager(daemon.DefaultServerConfig(listenAddr), daemon.Deps{
		Logger:     logger,
		APIHandler: srv.Handler(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to build daemon manager")
		return 1
	}
	mgr.RegisterShutdownHook("tracing", tracing.Shutdown)
	if rt.redis != nil {
		client := rt.redis
		mgr.RegisterShutdownHook("redis", func(context.Context) error { return client.Close() })
	}

	app := daemon.NewApp(logger, mgr, rt.holder, rt.remote)
	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "daemon.failed").Msg("daemon exited with error")
		return 1
	}
	return 0
}

type runtimeState struct {
	holder *config.Holder
	redis  *redis.Client
	remote daemon.Watcher
}

// bootstrap loads the initial snapshot. With MAPVIEW_REDIS_ADDR set, Redis is
// the source of truth and the file (or defaults) only seeds an empty key.
func bootstrap(ctx context.Context, path string, logger zerolog.Logger) (*runtimeState, error) {
	loader := config.NewLoader(path)

	redisAddr := strings.TrimSpace(config.ParseString(config.EnvRedisAddr, ""))
	if redisAddr == "" {
		cfg, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Str(xglog.FieldEvent, "config.loaded").
			Str(xglog.FieldSource, sourceLabel(path)).
			Str(xglog.FieldConfigPath, path).
			Msg("loaded configuration")
		return &runtimeState{holder: config.NewHolder(cfg, loader, path)}, nil
	}

	client, err := configsource.Dial(ctx, configsource.RedisOptions{
		Addr:     redisAddr,
		Password: config.ParseString(config.EnvRedisPassword, ""),
	})
	if err != nil {
		return nil, err
	}
	src := configsource.NewRedis(client, config.ParseString(config.EnvRedisKey, defaultRedisKey))

	cfg, err := src.Load(ctx)
	if errors.Is(err, configsource.ErrNotFound) {
		if cfg, err = loader.Load(ctx); err == nil {
			err = src.Publish(ctx, cfg)
		}
		if err == nil {
			logger.Info().
				Str(xglog.FieldEvent, "config.seeded").
				Str("key", src.Key()).
				Msg("seeded empty redis key from local configuration")
		}
	}
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str(xglog.FieldSource, "redis").
		Str("key", src.Key()).
		Msg("loaded configuration")
	return &runtimeState{
		holder: config.NewHolder(cfg, src, ""),
		redis:  client,
		remote: src,
	}, nil
}

// tracingConfig enables OTLP export only when a collector endpoint is set.
func tracingConfig() telemetry.Config {
	endpoint := strings.TrimSpace(config.ParseString(config.EnvOTelEndpoint, ""))
	return telemetry.Config{
		Enabled:        endpoint != "",
		ServiceName:    "mapview",
		ServiceVersion: version.Version,
		Exporter:       config.ParseString(config.EnvOTelExporter, telemetry.ExporterHTTP),
		Endpoint:       endpoint,
		SamplingRate:   config.ParseFloat(config.EnvOTelSampleRate, 1.0),
	}
}

func sourceLabel(path string) string {
	if path == "" {
		return "env+defaults"
	}
	return "file"
}
