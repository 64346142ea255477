// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
)

const (
	DefaultLogLevel = "info"
)

// Config is one immutable configuration snapshot.
type Config struct {
	accessToken  string
	gazetteer    Gazetteer
	stylePresets []StylePreset

	logLevel string
	strict   bool
}

// New builds a strictly validated configuration from the given values.
// Inputs are copied; later changes to them do not affect the result.
func New(accessToken string, gazetteer Gazetteer, presets []StylePreset) (*Config, error) {
	cfg := &Config{
		accessToken:  accessToken,
		gazetteer:    NewGazetteer(gazetteer.groups...),
		stylePresets: cloneStylePresets(presets),
		logLevel:     DefaultLogLevel,
		strict:       true,
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		accessToken:  "",
		gazetteer:    defaultGazetteer(),
		stylePresets: defaultStylePresets(),
		logLevel:     DefaultLogLevel,
		strict:       true,
	}
}

func defaultGazetteer() Gazetteer {
	return NewGazetteer(Group{
		Name: "Locations",
		Locations: []Location{
			{Name: "San Francisco, CA", View: ViewState{Zoom: 18, Center: Center{Lng: -122.4193, Lat: 37.7648}}},
			{Name: "Washington DC", View: ViewState{Zoom: 12, Center: Center{Lng: -77.0435, Lat: 38.9098}}},
		},
	})
}

func defaultStylePresets() []StylePreset {
	return []StylePreset{
		{
			ID:       "osm-carto",
			Name:     "OSM Carto",
			Type:     "maplibre-gl",
			Renderer: RendererMapLibreGL,
			URL:      "config/osm-carto.json",
		},
		{
			ID:       "protomaps-v2-debug",
			Name:     "Protomaps V2 Debug",
			Type:     "maplibre-gl",
			Renderer: RendererMapLibreGL,
			URL:      "config/protomaps-v2.json",
		},
	}
}

// AccessToken returns the renderer access token verbatim. Empty is a valid value.
func (c *Config) AccessToken() string {
	return c.accessToken
}

// Gazetteer returns a copy of the gazetteer.
func (c *Config) Gazetteer() Gazetteer {
	return NewGazetteer(c.gazetteer.groups...)
}

// StylePresets returns a copy of the style presets in declaration order.
func (c *Config) StylePresets() []StylePreset {
	return cloneStylePresets(c.stylePresets)
}

// DefaultStyle returns the first style preset, which the viewer activates on load.
func (c *Config) DefaultStyle() (StylePreset, bool) {
	if len(c.stylePresets) == 0 {
		return StylePreset{}, false
	}
	return c.stylePresets[0], true
}

// Style returns the preset with the given id.
func (c *Config) Style(id string) (StylePreset, bool) {
	for _, p := range c.stylePresets {
		if p.ID == id {
			return p, true
		}
	}
	return StylePreset{}, false
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() string {
	return c.logLevel
}

// Strict reports whether validation errors fail loading.
func (c *Config) Strict() bool {
	return c.strict
}
