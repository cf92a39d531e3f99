// Copyright 2025 Ryan Roden-Corrent
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package xlog sets up file logging. The terminal belongs to the UI, so all
// logs go to $XDG_CACHE_HOME/lasr/log.txt; verbosity comes from LASR_LOG.
package xlog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// EnvVar names the verbosity environment variable.
const EnvVar = "LASR_LOG"

// 📂 Path returns the log file path, honoring XDG_CACHE_HOME.
func Path() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "lasr", "log.txt"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "lasr", "log.txt"), nil
}

// 📝 ParseLevel maps a LASR_LOG value to a zerolog level. Empty or unknown
// values disable logging.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return zerolog.ErrorLevel
	case "warn":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.Disabled
	}
}

// 🏭 Setup opens the log file and builds the root logger. The returned
// closer flushes and closes the file.
func Setup() (zerolog.Logger, func() error, error) {
	level := ParseLevel(os.Getenv(EnvVar))
	if level == zerolog.Disabled {
		return zerolog.Nop(), func() error { return nil }, nil
	}

	path, err := Path()
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerolog.Nop(), nil, errors.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, errors.Errorf("opening log file: %w", err)
	}

	logger := zerolog.New(f).With().Timestamp().Caller().Logger().Level(level)
	return logger, f.Close, nil
}
