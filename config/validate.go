// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"io"
	"math"
	"log/slog"
	"strings"
)

// validLogLevels maps the accepted log level strings to slog levels.
var validLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return ErrEmptyDatabaseURL
	}

	if cfg.MaxConns <= 0 || cfg.MaxConns > math.MaxInt32 {
		return ErrInvalidMaxConns
	}

	if cfg.ConnectTimeout <= 0 {
		return ErrInvalidConnectTimeout
	}

	if cfg.HeaderTable == "" {
		return ErrEmptyHeaderTable
	}

	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if _, ok := validLogLevels[strings.ToLower(cfg.LogLevel)]; !ok {
		return ErrInvalidLogLevel
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return ErrInvalidLogFormat
	}

	return nil
}

// NewLogger builds a logger writing to w at the configured level and format.
// Unknown levels fall back to info, unknown formats to text.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, ok := validLogLevels[strings.ToLower(c.LogLevel)]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
