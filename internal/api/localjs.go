// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ManuGH/mapview/internal/config"
	xglog "github.com/ManuGH/mapview/internal/log"
)

// RenderLocalJS renders the snapshot as the ES module the viewer imports:
//
//	export { gazetteer, mapboxGlAccessToken, stylePresets };
//
// JSON literals are valid JavaScript expressions, and encoding/json escapes
// "<", ">" and "&", so the output is safe to inline.
func RenderLocalJS(cfg *config.Config) ([]byte, error) {
	doc := cfg.Document()

	gazetteer, err := json.MarshalIndent(doc.Gazetteer, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode gazetteer: %w", err)
	}
	token, err := json.Marshal(doc.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("encode access token: %w", err)
	}
	presets, err := json.MarshalIndent(doc.StylePresets, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode style presets: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "const gazetteer = %s;\n\n", gazetteer)
	fmt.Fprintf(&buf, "const mapboxGlAccessToken = %s;\n\n", token)
	fmt.Fprintf(&buf, "const stylePresets = %s;\n\n", presets)
	buf.WriteString("export { gazetteer, mapboxGlAccessToken, stylePresets };\n")
	return buf.Bytes(), nil
}

func (s *Server) handleLocalJS(w http.ResponseWriter, r *http.Request) {
	body, err := RenderLocalJS(s.snaps.Get())
	if err != nil {
		l := xglog.WithComponentFromContext(r.Context(), "api")
		l.Error().
			Err(err).
			Str(xglog.FieldEvent, "localjs.render_failed").
			Msg("failed to render config module")
		writeProblem(w, r, http.StatusInternalServerError, "render_failed", "could not render configuration module")
		return
	}

	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
