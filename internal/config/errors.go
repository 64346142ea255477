// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "errors"

var (
	// ErrUnknownConfigField classifies strict parse failures caused by unknown keys.
	// Use errors.Is(err, ErrUnknownConfigField) instead of string matching.
	ErrUnknownConfigField = errors.New("unknown config field")

	// ErrReloadThrottled is returned by Holder.Reload when reloads arrive faster
	// than the configured limit.
	ErrReloadThrottled = errors.New("config reload throttled")
)
