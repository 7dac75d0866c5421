package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/internal/logging"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/frame"
)

// Config is the resolved serialctl configuration.
type Config struct {
	LogLevel    string
	From        string
	To          string
	FrameFormat frame.Format
	Compression frame.Compression
	Quality     int
	MaxPayload  int
	Strict      bool
}

// DefaultConfig converts text to binary without compression.
func DefaultConfig() Config {
	return Config{
		LogLevel:    "info",
		From:        "text",
		To:          "binary",
		FrameFormat: frame.FormatBinary,
		Compression: frame.CompressionNone,
		Quality:     6,
		MaxPayload:  frame.DefaultMaxPayload,
	}
}

type fileConfig struct {
	LogLevel    string `toml:"log_level"`
	DefaultFrom string `toml:"default_from"`
	DefaultTo   string `toml:"default_to"`
	FrameFormat string `toml:"frame_format"`
	Compression string `toml:"compression"`
	Quality     int    `toml:"quality"`
	MaxPayload  int    `toml:"max_payload"`
	Strict      bool   `toml:"strict"`
}

func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load serialctl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load serialctl config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("default_from") {
		cfg.From = strings.TrimSpace(raw.DefaultFrom)
	}
	if meta.IsDefined("default_to") {
		cfg.To = strings.TrimSpace(raw.DefaultTo)
	}
	if meta.IsDefined("frame_format") {
		f, err := frame.ParseFormat(strings.TrimSpace(raw.FrameFormat))
		if err != nil {
			return Config{}, fmt.Errorf("parse frame_format: %w", err)
		}
		cfg.FrameFormat = f
	}
	if meta.IsDefined("compression") {
		c, err := frame.ParseCompression(strings.TrimSpace(raw.Compression))
		if err != nil {
			return Config{}, fmt.Errorf("parse compression: %w", err)
		}
		cfg.Compression = c
	}
	if meta.IsDefined("quality") {
		cfg.Quality = raw.Quality
	}
	if meta.IsDefined("max_payload") {
		cfg.MaxPayload = raw.MaxPayload
	}
	if meta.IsDefined("strict") {
		cfg.Strict = raw.Strict
	}

	return cfg, cfg.Validate()
}

// Validate checks every field that cannot be checked by its parser.
func (c Config) Validate() error {
	switch c.From {
	case "binary", "text", "frame":
	default:
		return fmt.Errorf("unknown input format %q (want binary|text|frame)", c.From)
	}
	switch c.To {
	case "binary", "text", "xml", "frame":
	default:
		return fmt.Errorf("unknown output format %q (want binary|text|xml|frame)", c.To)
	}
	if c.Quality < 0 || c.Quality > 11 {
		return fmt.Errorf("brotli quality %d out of range 0-11", c.Quality)
	}
	if c.MaxPayload <= 0 {
		return fmt.Errorf("max_payload must be positive, got %d", c.MaxPayload)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c Config) frameOptions() frame.Options {
	return frame.Options{
		Format:      c.FrameFormat,
		Compression: c.Compression,
		Quality:     c.Quality,
		MaxPayload:  c.MaxPayload,
	}
}
