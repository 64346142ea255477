// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import "errors"

// Wiring errors reported before any listener is bound.
var (
	ErrMissingLogger     = errors.New("daemon: logger is disabled or missing")
	ErrMissingAPIHandler = errors.New("daemon: no API handler configured")
	ErrMissingManager    = errors.New("daemon: app has no server manager")
)

// ErrManagerNotStarted is returned by Shutdown before Start has run.
var ErrManagerNotStarted = errors.New("daemon: manager not started")
