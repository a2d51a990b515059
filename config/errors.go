// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrEmptyDatabaseURL indicates no database connection string was given.
	ErrEmptyDatabaseURL = errors.New("config: database url must not be empty")

	// ErrInvalidMaxConns indicates the pool size is not positive or does not fit
	// in an int32.
	ErrInvalidMaxConns = errors.New("config: maxconns must be a positive integer")

	// ErrInvalidConnectTimeout indicates the connect timeout is not a positive duration.
	ErrInvalidConnectTimeout = errors.New("config: connecttimeout must be a positive duration")

	// ErrEmptyHeaderTable indicates the header table name is empty.
	ErrEmptyHeaderTable = errors.New("config: header table must not be empty")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrInvalidLogFormat indicates the log format is not recognized.
	ErrInvalidLogFormat = errors.New("config: invalid log format (must be \"text\" or \"json\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")

	// ErrInvalidValue indicates a value could not be parsed for its key.
	ErrInvalidValue = errors.New("config: invalid value")
)
