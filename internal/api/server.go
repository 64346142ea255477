// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves configuration snapshots to the map viewer over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ManuGH/mapview/internal/api/middleware"
	"github.com/ManuGH/mapview/internal/config"
	"github.com/ManuGH/mapview/internal/health"
)

// Snapshots yields the active configuration snapshot.
type Snapshots interface {
	Get() *config.Config
}

// Reloader replaces the active snapshot from its source.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Config holds the HTTP surface settings.
type Config struct {
	AllowedOrigins []string
	// ServiceName names tracing spans; empty disables tracing.
	ServiceName string
	// RateLimit is requests per minute per client IP; zero uses the default.
	RateLimit int
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
}

// Deps are the collaborators the server reads from.
type Deps struct {
	Snapshots Snapshots
	// Reloader is optional; without it the reload endpoint answers 404.
	Reloader Reloader
	Health   *health.Manager
}

// Server routes API requests to handlers reading the active snapshot.
type Server struct {
	cfg      Config
	snaps    Snapshots
	reloader Reloader
	health   *health.Manager
}

var errMissingSnapshots = errors.New("api: snapshot source is required")

// New creates a server. Snapshots must be non-nil.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Snapshots == nil {
		return nil, errMissingSnapshots
	}
	hm := deps.Health
	if hm == nil {
		hm = health.NewManager("")
	}
	return &Server{
		cfg:      cfg,
		snaps:    deps.Snapshots,
		reloader: deps.Reloader,
		health:   hm,
	}, nil
}

// Handler returns the configured HTTP handler with all routes and middleware applied.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.routes())
	if s.cfg.ServiceName != "" {
		h = middleware.OTelHTTP(s.cfg.ServiceName, h)
	}
	return h
}
