// SPDX-License-Identifier: http://www.apache.org/licenses/LICENSE-2.0
/*
 *
 * Copyright (C) 2026 , Inc.
 *
 * Authors:
 *
 */

// Package config loads codec settings from a JSON file and turns them
// into session parameters and a logger.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bgpattr/attr"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the settings shared by the command line tools.
type Config struct {
	// Strict rejects zero-length ATOMIC_AGGREGATE payloads.
	Strict bool `json:"strict"`
	// Lenient skips malformed attributes instead of failing the list.
	Lenient  bool   `json:"lenient"`
	LogLevel string `json:"logLevel"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{LogLevel: "info"}
}

// Load reads the named file on top of Default. A missing file is not an
// error.
func Load(filename string) (Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	if err := LoadJSON(filename, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("config: %s: %w", filename, err)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return Default(), fmt.Errorf("config: %s: %w", filename, err)
	}
	return cfg, nil
}

// Save writes cfg to the named file.
func Save(filename string, cfg Config) error {
	return SaveJSON(filename, cfg)
}

// Session returns the codec session parameters for cfg.
func (c Config) Session() *attr.SessionParams {
	return &attr.SessionParams{Strict: c.Strict}
}

// Logger builds a production logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

// SaveJSON writes the JSON encoding of v to the named file, creating
// parent directories if they don't exist.
func SaveJSON(filename string, v interface{}) error {
	dir := filepath.Dir(filename)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}

// LoadJSON reads the JSON-encoded file and decodes it into v.
func LoadJSON(filename string, v interface{}) error {
	b, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
