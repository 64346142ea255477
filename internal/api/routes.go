// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/ManuGH/mapview/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            true,
		AllowedOrigins:        s.cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		EnableLogging:         true,
	})

	// Probes and scrapes stay outside the rate limit.
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	if s.cfg.MetricsHandler != nil {
		r.Handle("/metrics", s.cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{RequestLimit: s.cfg.RateLimit}))

		r.Get("/config/local.js", s.handleLocalJS)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/config", s.handleConfig)
			r.With(middleware.RateLimit(middleware.RateLimitConfig{RequestLimit: 10})).
				Post("/config/reload", s.handleReload)

			r.Get("/gazetteer", s.handleGazetteer)
			r.Get("/gazetteer/{group}", s.handleGazetteerGroup)
			r.Get("/gazetteer/{group}/{place}", s.handleGazetteerPlace)

			r.Get("/styles", s.handleStyles)
			r.Get("/styles/default", s.handleDefaultStyle)
			r.Get("/styles/{id}", s.handleStyle)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
	})

	return r
}
