// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys for configuration events.
const (
	ConfigSourceKey       = "config.source"
	ConfigOutcomeKey      = "config.outcome"
	ConfigStylePresetsKey = "config.style_presets"
	ConfigGroupsKey       = "config.gazetteer_groups"
	ConfigLocationsKey    = "config.gazetteer_locations"
)

// ConfigSourceAttributes describes where a snapshot came from.
func ConfigSourceAttributes(source, path string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(ConfigSourceKey, source)}
	if path != "" {
		attrs = append(attrs, attribute.String("config.path", path))
	}
	return attrs
}

// ConfigSnapshotAttributes summarises a loaded snapshot.
func ConfigSnapshotAttributes(presets, groups, locations int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(ConfigStylePresetsKey, presets),
		attribute.Int(ConfigGroupsKey, groups),
		attribute.Int(ConfigLocationsKey, locations),
	}
}

// OutcomeAttribute tags a span with the result of an operation.
func OutcomeAttribute(outcome string) attribute.KeyValue {
	return attribute.String(ConfigOutcomeKey, outcome)
}
