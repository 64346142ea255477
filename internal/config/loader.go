// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	xglog "github.com/ManuGH/mapview/internal/log"
	"github.com/ManuGH/mapview/internal/validate"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Source produces a fresh configuration snapshot.
type Source interface {
	Load(ctx context.Context) (*Config, error)
}

// Loader handles configuration loading with precedence ENV > File > Defaults.
type Loader struct {
	configPath string
	logger     zerolog.Logger
}

// NewLoader creates a new configuration loader. An empty path loads the
// built-in defaults plus environment overrides.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		logger:     xglog.WithComponent("config"),
	}
}

// Path returns the configuration file path, if any.
func (l *Loader) Path() string {
	return l.configPath
}

// Load loads configuration with precedence: ENV > File > Defaults.
// Order: defaults, strict file parse, environment, validation.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	def := Default()
	cfg := &Config{
		accessToken:  def.accessToken,
		gazetteer:    def.gazetteer,
		stylePresets: def.stylePresets,
		logLevel:     def.logLevel,
		strict:       def.strict,
	}
	v := validate.New()

	// 1. File
	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
		l.mergeFileConfig(cfg, fileCfg, v)
	}

	// 2. Environment (highest priority)
	applyEnv(cfg)

	// 3. Validate
	return finalize(cfg, v, l.logger)
}

// applyEnv overlays MAPVIEW_* settings onto cfg. A set but empty access
// token clears the configured one.
func applyEnv(cfg *Config) {
	if token, ok := os.LookupEnv(EnvAccessToken); ok {
		cfg.accessToken = token
	}
	cfg.strict = ParseBool(EnvConfigStrict, cfg.strict)
	if level := ParseString(EnvLogLevel, ""); level != "" {
		cfg.logLevel = level
	}
}

// finalize validates cfg on top of the findings already in v. Strict
// snapshots fail on any finding; lenient ones log them and are served.
func finalize(cfg *Config, v *validate.Validator, logger zerolog.Logger) (*Config, error) {
	validateInto(v, cfg)
	if !v.IsValid() {
		if cfg.strict {
			return nil, fmt.Errorf("config validation failed: %w", v.Err())
		}
		for _, e := range v.Errors() {
			logger.Warn().
				Str(xglog.FieldEvent, "config.validation_warning").
				Str("field", e.Field).
				Interface("value", e.Value).
				Msg(e.Message)
		}
		if _, err := validate.ParseLogLevel(cfg.logLevel); err != nil {
			cfg.logLevel = DefaultLogLevel
		}
	}
	for _, e := range Lint(cfg) {
		logger.Warn().
			Str(xglog.FieldEvent, "config.lint").
			Str("field", e.Field).
			Msg(e.Message)
	}
	return cfg, nil
}

func (l *Loader) mergeFileConfig(dst *Config, src *FileConfig, v *validate.Validator) {
	if src.LogLevel != "" {
		dst.logLevel = src.LogLevel
	}
	if src.ConfigStrict != nil {
		dst.strict = *src.ConfigStrict
	}
	if src.AccessToken != nil {
		dst.accessToken = *src.AccessToken
	}
	if src.Gazetteer != nil {
		dst.gazetteer = src.Gazetteer.build(v)
	}
	if src.StylePresets != nil {
		dst.stylePresets = cloneStylePresets(*src.StylePresets)
		if dst.stylePresets == nil {
			dst.stylePresets = []StylePreset{}
		}
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return ParseFile(data)
}

// ParseFile strictly decodes a YAML configuration document.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			for _, msg := range typeErr.Errors {
				if strings.Contains(msg, "not found in type") {
					return nil, fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
				}
			}
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}
