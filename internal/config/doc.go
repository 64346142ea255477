// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config holds the map viewer configuration: the renderer access
// token, the gazetteer of named map views and the ordered list of style
// presets.
//
// A *Config is immutable once constructed. Reloads build a new snapshot
// and swap it inside a Holder; readers never observe partial updates.
package config
