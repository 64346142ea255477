// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ManuGH/mapview/internal/config"
	xglog "github.com/ManuGH/mapview/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Each handler reads the snapshot once so a concurrent reload never mixes
// two configurations in one response.

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.snaps.Get()
	writeJSON(w, http.StatusOK, cfg.Document())
}

func (s *Server) handleGazetteer(w http.ResponseWriter, r *http.Request) {
	cfg := s.snaps.Get()
	writeJSON(w, http.StatusOK, cfg.Gazetteer())
}

// pathParam returns the unescaped route parameter. chi matches on the raw
// path only when RawPath is set, so the value is percent-encoded exactly then.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// lookupMiss starts a debug event for a request that named a missing entry.
func lookupMiss(r *http.Request) *zerolog.Event {
	l := xglog.WithComponentFromContext(r.Context(), "api")
	return l.Debug().Str(xglog.FieldEvent, "lookup.miss")
}

type groupResponse struct {
	Name      string         `json:"name"`
	Locations []locationView `json:"locations"`
}

type locationView struct {
	Name string `json:"name"`
	config.ViewState
}

func (s *Server) handleGazetteerGroup(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "group")
	grp, ok := s.snaps.Get().Gazetteer().Group(name)
	if !ok {
		lookupMiss(r).Str(xglog.FieldGroup, name).Msg("gazetteer group not found")
		writeProblem(w, r, http.StatusNotFound, "group_not_found", fmt.Sprintf("gazetteer group %q does not exist", name))
		return
	}

	resp := groupResponse{Name: grp.Name, Locations: make([]locationView, 0, len(grp.Locations))}
	for _, loc := range grp.Locations {
		resp.Locations = append(resp.Locations, locationView{Name: loc.Name, ViewState: loc.View})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGazetteerPlace(w http.ResponseWriter, r *http.Request) {
	group := pathParam(r, "group")
	place := pathParam(r, "place")

	gz := s.snaps.Get().Gazetteer()
	grp, ok := gz.Group(group)
	if !ok {
		lookupMiss(r).Str(xglog.FieldGroup, group).Msg("gazetteer group not found")
		writeProblem(w, r, http.StatusNotFound, "group_not_found", fmt.Sprintf("gazetteer group %q does not exist", group))
		return
	}
	view, ok := grp.Location(place)
	if !ok {
		lookupMiss(r).Str(xglog.FieldGroup, group).Str(xglog.FieldPlace, place).Msg("place not found")
		writeProblem(w, r, http.StatusNotFound, "place_not_found", fmt.Sprintf("place %q does not exist in group %q", place, group))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	presets := s.snaps.Get().StylePresets()
	if presets == nil {
		presets = []config.StylePreset{}
	}
	writeJSON(w, http.StatusOK, presets)
}

func (s *Server) handleDefaultStyle(w http.ResponseWriter, r *http.Request) {
	preset, ok := s.snaps.Get().DefaultStyle()
	if !ok {
		writeProblem(w, r, http.StatusNotFound, "style_not_found", "no style presets are configured")
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	preset, ok := s.snaps.Get().Style(id)
	if !ok {
		lookupMiss(r).Str(xglog.FieldStyleID, id).Msg("style preset not found")
		writeProblem(w, r, http.StatusNotFound, "style_not_found", fmt.Sprintf("style preset %q does not exist", id))
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

type reloadResponse struct {
	Status       string `json:"status"`
	StylePresets int    `json:"stylePresets"`
	Groups       int    `json:"groups"`
	Locations    int    `json:"locations"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reloader == nil {
		writeProblem(w, r, http.StatusNotFound, "reload_unavailable", "configuration reload is not enabled")
		return
	}

	logger := xglog.WithComponentFromContext(r.Context(), "api")
	if err := s.reloader.Reload(r.Context()); err != nil {
		if errors.Is(err, config.ErrReloadThrottled) {
			w.Header().Set("Retry-After", "2")
			writeProblem(w, r, http.StatusTooManyRequests, "reload_throttled", "configuration reloads are rate limited")
			return
		}
		logger.Warn().Err(err).Str(xglog.FieldEvent, "config.reload_rejected").Msg("reload request rejected")
		writeProblem(w, r, http.StatusUnprocessableEntity, "config_invalid", err.Error())
		return
	}

	cfg := s.snaps.Get()
	gz := cfg.Gazetteer()
	writeJSON(w, http.StatusOK, reloadResponse{
		Status:       "reloaded",
		StylePresets: len(cfg.StylePresets()),
		Groups:       gz.Len(),
		Locations:    gz.NumLocations(),
	})
}
