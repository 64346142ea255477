// SPDX-License-Identifier: MIT
package validate

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// LogLevels lists the level names accepted in configuration files.
var LogLevels = []string{"trace", "debug", "info", "warn", "error"}

// ParseLogLevel maps a configured level name onto zerolog. Fatal, panic and
// disabled are rejected because they silence reload failures.
func ParseLogLevel(s string) (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl < zerolog.TraceLevel || lvl > zerolog.ErrorLevel {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q (must be: %s)", s, strings.Join(LogLevels, ", "))
	}
	return lvl, nil
}

// LogLevel validates a configured level name.
func (v *Validator) LogLevel(field, value string) {
	if _, err := ParseLogLevel(value); err != nil {
		v.AddError(field, "must be one of "+strings.Join(LogLevels, ", "), value)
	}
}

// LngLat validates a WGS84 position in degrees.
func (v *Validator) LngLat(field string, lng, lat float64) {
	v.FloatRange(field+".lng", lng, -180, 180)
	v.FloatRange(field+".lat", lat, -90, 90)
}
