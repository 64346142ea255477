// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

// FileConfig represents the YAML configuration structure.
// Pointer fields distinguish "not set" (keep the default) from an explicit
// empty value.
type FileConfig struct {
	LogLevel     string         `yaml:"logLevel,omitempty"`
	ConfigStrict *bool          `yaml:"configStrict,omitempty"`
	AccessToken  *string        `yaml:"accessToken,omitempty"`
	Gazetteer    *rawGazetteer  `yaml:"gazetteer,omitempty"`
	StylePresets *[]StylePreset `yaml:"stylePresets,omitempty"`
}

// savedFile is the shape written by Manager.Save.
type savedFile struct {
	LogLevel     string        `yaml:"logLevel,omitempty"`
	ConfigStrict *bool         `yaml:"configStrict,omitempty"`
	AccessToken  string        `yaml:"accessToken"`
	Gazetteer    Gazetteer     `yaml:"gazetteer"`
	StylePresets []StylePreset `yaml:"stylePresets"`
}

func toSavedFile(cfg *Config) savedFile {
	out := savedFile{
		LogLevel:     cfg.logLevel,
		AccessToken:  cfg.accessToken,
		Gazetteer:    cfg.Gazetteer(),
		StylePresets: cfg.StylePresets(),
	}
	if out.StylePresets == nil {
		out.StylePresets = []StylePreset{}
	}
	if !cfg.strict {
		out.ConfigStrict = boolPtr(false)
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
