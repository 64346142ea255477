// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"

	"github.com/ManuGH/mapview/internal/validate"
)

// Validate checks the hard invariants of a snapshot: unique ids and names,
// required preset fields and coordinate ranges.
func Validate(cfg *Config) error {
	v := validate.New()
	validateInto(v, cfg)
	return v.Err()
}

func validateInto(v *validate.Validator, cfg *Config) {
	if cfg.logLevel != "" {
		v.LogLevel("logLevel", cfg.logLevel)
	}

	groups := v.Unique("gazetteer.group")
	for _, grp := range cfg.gazetteer.groups {
		v.NotEmpty("gazetteer.group", grp.Name)
		groups.Add(grp.Name)

		places := v.Unique(fmt.Sprintf("gazetteer[%q].place", grp.Name))
		for _, loc := range grp.Locations {
			field := locationField(grp.Name, loc.Name)
			v.NotEmpty(field, loc.Name)
			places.Add(loc.Name)

			v.FloatRange(field+".zoom", loc.View.Zoom, MinZoom, MaxZoom)
			v.LngLat(field+".center", loc.View.Center.Lng, loc.View.Center.Lat)
		}
	}

	ids := v.Unique("stylePresets.id")
	for i, p := range cfg.stylePresets {
		field := fmt.Sprintf("stylePresets[%d]", i)
		v.NotEmpty(field+".id", p.ID)
		if p.ID != "" {
			ids.Add(p.ID)
		}
		v.NotEmpty(field+".name", p.Name)
		v.DocumentRef(field+".url", p.URL)
	}
}

// Lint reports conditions that are legal in the configuration but that a
// consumer is likely to trip over. They are logged, never fatal.
func Lint(cfg *Config) []validate.Error {
	v := validate.New()
	needsToken := false
	for i, p := range cfg.stylePresets {
		field := fmt.Sprintf("stylePresets[%d].renderer", i)
		v.OneOf(field, p.Renderer, KnownRenderers)
		if p.Renderer == RendererMapboxGL {
			needsToken = true
		}
	}
	if needsToken && cfg.accessToken == "" {
		v.AddError("accessToken", "empty, but a mapbox-gl style preset is configured", "")
	}
	if len(cfg.stylePresets) == 0 {
		v.AddError("stylePresets", "no style presets configured; the viewer has no default style", nil)
	}
	return v.Errors()
}
