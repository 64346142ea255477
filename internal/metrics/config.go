// SPDX-License-Identifier: MIT
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reload outcomes.
const (
	ReloadSucceeded = "success"
	ReloadFailed    = "failure"
	ReloadThrottled = "throttled"
)

var (
	configReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapview_config_reloads_total",
		Help: "Configuration reload attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure|throttled

	configLastReload = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mapview_config_last_reload_timestamp_seconds",
		Help: "Unix time of the last successful configuration reload",
	})

	configStylePresets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mapview_config_style_presets",
		Help: "Number of style presets in the active configuration",
	})

	configGazetteerGroups = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mapview_config_gazetteer_groups",
		Help: "Number of gazetteer groups in the active configuration",
	})

	configGazetteerLocations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mapview_config_gazetteer_locations",
		Help: "Number of gazetteer locations in the active configuration",
	})

	configSourceErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapview_config_source_errors_total",
		Help: "Errors reading or publishing configuration by source",
	}, []string{"source", "op"}) // source=redis op=load|publish|watch
)

// RecordConfigReload counts one reload attempt.
func RecordConfigReload(outcome string) {
	configReloadsTotal.WithLabelValues(outcome).Inc()
	if outcome == ReloadSucceeded {
		configLastReload.Set(float64(time.Now().Unix()))
	}
}

// SetConfigSnapshot publishes the size of the active snapshot.
func SetConfigSnapshot(presets, groups, locations int) {
	configStylePresets.Set(float64(presets))
	configGazetteerGroups.Set(float64(groups))
	configGazetteerLocations.Set(float64(locations))
}

// RecordSourceError counts a failed config source operation.
func RecordSourceError(source, op string) {
	configSourceErrors.WithLabelValues(source, op).Inc()
}
