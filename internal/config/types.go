// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

// Coordinate and zoom bounds for gazetteer entries.
const (
	MinZoom = 0
	MaxZoom = 24

	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Renderer tags understood by the viewer front-end.
const (
	RendererMapLibreGL = "maplibre-gl"
	RendererMapboxGL   = "mapbox-gl"
)

// KnownRenderers lists the renderer tags the front-end can mount.
var KnownRenderers = []string{RendererMapLibreGL, RendererMapboxGL}

// Center is a geographic coordinate pair in WGS84 degrees.
type Center struct {
	Lng float64 `yaml:"lng" json:"lng"`
	Lat float64 `yaml:"lat" json:"lat"`
}

// ViewState is the map viewport a gazetteer entry jumps to.
type ViewState struct {
	Zoom   float64 `yaml:"zoom" json:"zoom"`
	Center Center  `yaml:"center" json:"center"`
}

// Location is a named gazetteer entry.
type Location struct {
	Name string
	View ViewState
}

// Group is a named, ordered list of locations shown as one dropdown section.
type Group struct {
	Name      string
	Locations []Location
}

// Location returns the view for the named place within the group.
func (g Group) Location(name string) (ViewState, bool) {
	for _, loc := range g.Locations {
		if loc.Name == name {
			return loc.View, true
		}
	}
	return ViewState{}, false
}

// StylePreset references a style document and the renderer it targets.
type StylePreset struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Renderer string `yaml:"renderer" json:"renderer"`
	URL      string `yaml:"url" json:"url"`
}
