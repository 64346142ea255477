// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// configgen writes configuration artifacts: a starter YAML file holding the
// built-in defaults, and the static ES module consumed by the viewer for
// deployments without the daemon.
//
// Usage:
//
//	configgen -o config.yaml
//	configgen -from config.yaml -js public/config/local.js
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ManuGH/mapview/internal/api"
	"github.com/ManuGH/mapview/internal/config"
	xglog "github.com/ManuGH/mapview/internal/log"
	"github.com/google/renameio/v2"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("configgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	from := fs.String("from", "", "source YAML config (default: built-in defaults)")
	out := fs.String("o", "", "write the configuration as YAML to this path")
	js := fs.String("js", "", "write the viewer ES module to this path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *out == "" && *js == "" {
		fmt.Fprintln(stderr, "configgen: at least one of -o or -js is required")
		return 2
	}

	xglog.Configure(xglog.Config{Level: "warn", Output: stderr})

	cfg := config.Default()
	if *from != "" {
		loaded, err := config.NewLoader(*from).Load(context.Background())
		if err != nil {
			return fail(stderr, err)
		}
		cfg = loaded
	}

	if *out != "" {
		if err := config.NewManager(*out).Save(cfg); err != nil {
			return fail(stderr, err)
		}
		fmt.Fprintf(stdout, "wrote %s\n", *out)
	}

	if *js != "" {
		body, err := api.RenderLocalJS(cfg)
		if err != nil {
			return fail(stderr, err)
		}
		if err := os.MkdirAll(filepath.Dir(*js), 0750); err != nil {
			return fail(stderr, err)
		}
		if err := renameio.WriteFile(*js, body, 0644); err != nil {
			return fail(stderr, fmt.Errorf("write %s: %w", *js, err))
		}
		fmt.Fprintf(stdout, "wrote %s\n", *js)
	}
	return 0
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "configgen: %v\n", err)
	return 1
}
