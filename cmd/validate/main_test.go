// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ManuGH/mapview/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdata = "../../internal/config/testdata/"

func TestValidateCLI(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantExit   int
		wantStdout string
		wantStderr string
	}{
		{"valid minimal config", []string{"-f", testdata + "valid-minimal.yaml"}, 0, "is valid", ""},
		{"valid full config", []string{"--file", testdata + "valid.yaml"}, 0, "2 gazetteer groups", ""},
		{"invalid unknown key", []string{"-f", testdata + "invalid-unknown-key.yaml"}, 1, "", "unknown config field"},
		{"invalid type mismatch", []string{"-f", testdata + "invalid-type.yaml"}, 1, "", "Configuration error"},
		{"duplicate style id", []string{"-f", testdata + "invalid-duplicate-id.yaml"}, 1, "", "duplicate value"},
		{"missing file", []string{"-f", testdata + "nope.yaml"}, 1, "", "Configuration error"},
		{"no file flag", nil, 2, "", "--file is required"},
		{"bad flag", []string{"-x"}, 2, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)

			assert.Equal(t, tt.wantExit, code, "stderr: %s", stderr.String())
			if tt.wantStdout != "" {
				assert.Contains(t, stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" {
				assert.Contains(t, stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestValidateCLI_LintWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stylePresets: []\n"), 0600))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"-f", path}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "warning: stylePresets")
}

func TestValidateCLI_JSONSnapshot(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "snapshot.json")
	data, err := json.Marshal(config.Default())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(good, data, 0600))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"-f", good}, &stdout, &stderr))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"mapboxGlAccessToken":""}`), 0600))
	assert.Equal(t, 1, run([]string{"-f", bad}, &stdout, &stderr))
}
