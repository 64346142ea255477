// SPDX-License-Identifier: MIT
package validate

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name           string
		value          string
		allowedSchemes []string
		wantErr        bool
	}{
		{"valid http", "http://example.com", []string{"http", "https"}, false},
		{"valid https", "https://tiles.example.com/style.json", []string{"http", "https"}, false},
		{"empty url", "", []string{"http"}, true},
		{"no host", "http://", []string{"http"}, true},
		{"invalid scheme", "ftp://example.com", []string{"http", "https"}, true},
		{"no scheme", "example.com", []string{"http"}, true},
		{"with port", "http://example.com:8080", []string{"http"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.URL("testURL", tt.value, tt.allowedSchemes)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_DocumentRef(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"relative path", "config/osm-carto.json", false},
		{"dot relative", "./styles/dark.json", false},
		{"root relative", "/styles/dark.json", false},
		{"https url", "https://tiles.example.com/v2/style.json", false},
		{"with query", "https://api.example.com/style.json?key=abc", false},
		{"empty", "", true},
		{"whitespace", "  ", true},
		{"traversal", "../secrets.json", true},
		{"nested traversal", "config/../../etc/passwd", true},
		{"unsupported scheme", "ftp://example.com/style.json", true},
		{"scheme without host", "https:///style.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.DocumentRef("url", tt.value)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error for %q, got none", tt.value)
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_FloatRange(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"negative bound", -180, false},
		{"positive bound", 180, false},
		{"inside", -122.4193, false},
		{"below", -180.0001, true},
		{"above", 180.5, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.FloatRange("lng", tt.value, -180, 180)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_NotEmpty(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"non-empty", "hello", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"tab only", "\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.NotEmpty("testField", tt.value)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_OneOf(t *testing.T) {
	allowed := []string{"maplibre-gl", "mapbox-gl"}

	v := New()
	v.OneOf("renderer", "maplibre-gl", allowed)
	if !v.IsValid() {
		t.Errorf("unexpected error: %v", v.Err())
	}

	v = New()
	v.OneOf("renderer", "leaflet", allowed)
	if v.IsValid() {
		t.Error("expected error for unknown renderer")
	}
}

func TestValidator_Unique(t *testing.T) {
	v := New()
	ids := v.Unique("stylePresets.id")

	if !ids.Add("osm-carto") {
		t.Error("first add should report new key")
	}
	if !ids.Add("protomaps-v2-debug") {
		t.Error("second distinct add should report new key")
	}
	if ids.Add("osm-carto") {
		t.Error("repeated add should report duplicate")
	}

	errs := v.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Field != "stylePresets.id" || errs[0].Value != "osm-carto" {
		t.Errorf("unexpected error: %+v", errs[0])
	}
}

func TestValidator_MultipleErrors(t *testing.T) {
	v := New()

	v.FloatRange("zoom", -1, 0, 24)
	v.URL("url", "", []string{"http"})
	v.NotEmpty("name", "")

	if v.IsValid() {
		t.Fatal("expected errors, got none")
	}

	if n := len(v.Errors()); n != 3 {
		t.Errorf("expected 3 errors, got %d", n)
	}

	err := v.Err()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors()) != 3 {
		t.Errorf("expected 3 wrapped errors, got %d", len(verr.Errors()))
	}
	msg := err.Error()
	for _, field := range []string{"zoom", "url", "name"} {
		if !strings.Contains(msg, field) {
			t.Errorf("error message should mention %q: %s", field, msg)
		}
	}
}

func TestValidator_ErrIsolatedFromLaterErrors(t *testing.T) {
	v := New()
	v.NotEmpty("a", "")
	err := v.Err()
	v.NotEmpty("b", "")

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors()) != 1 {
		t.Errorf("snapshot should hold 1 error, got %d", len(verr.Errors()))
	}
}

func TestValidator_NoErrors(t *testing.T) {
	v := New()
	if err := v.Err(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"trace", zerolog.TraceLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"fatal", zerolog.NoLevel, true},
		{"disabled", zerolog.NoLevel, true},
		{"verbose", zerolog.NoLevel, true},
		{"", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidator_LogLevel(t *testing.T) {
	v := New()
	v.LogLevel("logLevel", "info")
	if !v.IsValid() {
		t.Fatalf("info should be accepted: %v", v.Err())
	}
	v.LogLevel("logLevel", "loud")
	if len(v.Errors()) != 1 || v.Errors()[0].Field != "logLevel" {
		t.Errorf("expected one logLevel error, got %v", v.Errors())
	}
}

func TestValidator_LngLat(t *testing.T) {
	v := New()
	v.LngLat("center", -122.4193, 37.7648)
	v.LngLat("center", 180, -90)
	if !v.IsValid() {
		t.Fatalf("in-range positions rejected: %v", v.Err())
	}

	v.LngLat("bad", 181, math.NaN())
	errs := v.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Field != "bad.lng" || errs[1].Field != "bad.lat" {
		t.Errorf("unexpected fields: %v", errs)
	}
}
