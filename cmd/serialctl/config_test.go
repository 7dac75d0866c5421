package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/frame"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "serialctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
default_to = "frame"
frame_format = "text"
compression = "brotli"
quality = 9
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)

	want := DefaultConfig()
	want.LogLevel = "debug"
	want.To = "frame"
	want.FrameFormat = frame.FormatText
	want.Compression = frame.CompressionBrotli
	want.Quality = 9
	assert.Equal(t, want, cfg)
}

func TestLoadConfigEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `log_level = `},
		{"unknown key", `colour = "blue"`},
		{"bad compression", `compression = "zstd"`},
		{"bad frame format", `frame_format = "xml"`},
		{"bad from", `default_from = "xml"`},
		{"bad to", `default_to = "yaml"`},
		{"bad quality", `quality = 12`},
		{"bad max payload", `max_payload = 0`},
		{"bad level", `log_level = "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
