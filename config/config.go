// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and validates the settings of the chain header
// stores. Settings live in a key=value file; CHAINSTORE_* environment
// variables override it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the chain store settings.
type Config struct {
	DatabaseURL    string
	MaxConns       int
	ConnectTimeout time.Duration
	HeaderTable    string
	DataDir        string
	LogLevel       string
	LogFormat      string
}

// File keys. Environment variables use the upper-case key prefixed with
// CHAINSTORE_, e.g. CHAINSTORE_DATABASEURL.
const (
	keyDatabaseURL    = "databaseurl"
	keyMaxConns       = "maxconns"
	keyConnectTimeout = "connecttimeout"
	keyHeaderTable    = "headertable"
	keyDataDir        = "datadir"
	keyLogLevel       = "loglevel"
	keyLogFormat      = "logformat"

	envPrefix = "CHAINSTORE_"
)

var allKeys = []string{
	keyDatabaseURL, keyMaxConns, keyConnectTimeout, keyHeaderTable,
	keyDataDir, keyLogLevel, keyLogFormat,
}

// DefaultDataDir returns ~/.chainstore, or .chainstore when the home
// directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chainstore"
	}
	return filepath.Join(home, ".chainstore")
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DatabaseURL:    "postgres://localhost:5432/chainstore",
		MaxConns:       10,
		ConnectTimeout: 5 * time.Second,
		HeaderTable:    "block_headers",
		DataDir:        DefaultDataDir(),
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// LoadConfig reads the file at path on top of DefaultConfig. Unknown keys
// are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, ErrConfigNotFound
		}
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfigLine, err)
	}

	if err := cfg.apply(values); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any CHAINSTORE_* variables set in the
// process environment.
func ApplyEnv(cfg Config) (Config, error) {
	values := make(map[string]string)
	for _, key := range allKeys {
		if v, ok := os.LookupEnv(envPrefix + strings.ToUpper(key)); ok {
			values[key] = v
		}
	}
	if err := cfg.apply(values); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) apply(values map[string]string) error {
	for key, raw := range values {
		v := strings.TrimSpace(raw)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case keyDatabaseURL:
			c.DatabaseURL = v
		case keyMaxConns:
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidValue, key, err)
			}
			c.MaxConns = n
		case keyConnectTimeout:
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidValue, key, err)
			}
			c.ConnectTimeout = d
		case keyHeaderTable:
			c.HeaderTable = v
		case keyDataDir:
			c.DataDir = v
		case keyLogLevel:
			c.LogLevel = v
		case keyLogFormat:
			c.LogFormat = v
		}
	}
	return nil
}

// SaveConfig writes cfg to path, creating the parent directory if needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	values := map[string]string{
		keyDatabaseURL:    cfg.DatabaseURL,
		keyMaxConns:       strconv.Itoa(cfg.MaxConns),
		keyConnectTimeout: cfg.ConnectTimeout.String(),
		keyHeaderTable:    cfg.HeaderTable,
		keyDataDir:        cfg.DataDir,
		keyLogLevel:       cfg.LogLevel,
		keyLogFormat:      cfg.LogFormat,
	}
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
