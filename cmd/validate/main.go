// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// validate is a CLI tool to validate mapview configuration files.
//
// Usage:
//
//	validate -f config.yaml
//	validate --file snapshot.json
//
// YAML files are loaded exactly as the daemon loads them (defaults and
// environment included). JSON files are checked as published snapshots.
//
// Exit codes:
//   - 0: Configuration is valid
//   - 1: Configuration is invalid (parse or validation error)
//   - 2: Usage error (missing required flag)
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/mapview/internal/config"
	xglog "github.com/ManuGH/mapview/internal/log"
	"github.com/ManuGH/mapview/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var file string
	var showVersion bool
	fs.StringVar(&file, "file", "", "path to configuration file (.yaml, .yml or .json)")
	fs.StringVar(&file, "f", "", "path to configuration file (shorthand)")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	if file == "" {
		fmt.Fprintln(stderr, "Error: --file is required")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  validate -f config.yaml")
		fmt.Fprintln(stderr, "  validate --file snapshot.json")
		return 2
	}

	// Loader warnings go to stderr, not the report.
	xglog.Configure(xglog.Config{Level: "error", Output: stderr})

	cfg, err := load(file)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n", file)
		fmt.Fprintf(stderr, "  %v\n", err)
		return 1
	}

	for _, w := range config.Lint(cfg) {
		fmt.Fprintf(stdout, "warning: %s: %s\n", w.Field, w.Message)
	}
	fmt.Fprintf(stdout, "✓ %s is valid (%d style presets, %d gazetteer groups, %d locations)\n",
		file, len(cfg.StylePresets()), cfg.Gazetteer().Len(), cfg.Gazetteer().NumLocations())
	return 0
}

func load(file string) (*config.Config, error) {
	if strings.EqualFold(filepath.Ext(file), ".json") {
		// #nosec G304 -- path supplied by the operator
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		return config.ParseJSON(data)
	}
	return config.NewLoader(file).Load(context.Background())
}
