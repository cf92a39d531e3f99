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

package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rcorre/lasr/pkg/keymap"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers.
type Parser interface {
	// 📝 Parse parses the config from bytes.
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file.
	CanParse(filename string) bool
}

// 🗺️ parsers is the list of available parsers.
var parsers []Parser

// 📝 Register registers a parser.
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file.
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is the startup configuration.
type Config struct {
	// Threads sets the search worker pool size; 0 auto-selects.
	Threads int `toml:"threads" yaml:"threads"`
	// AutoPairs inserts matching brackets while editing the query.
	AutoPairs bool `toml:"auto_pairs" yaml:"auto_pairs"`
	// IgnoreCase sets the initial case-insensitivity state.
	IgnoreCase bool `toml:"ignore_case" yaml:"ignore_case"`
	// MaxFileSize skips files larger than this many bytes; 0 uses the
	// built-in default.
	MaxFileSize int64 `toml:"max_file_size" yaml:"max_file_size"`
	// Include restricts the search set to matching globs when non-empty.
	Include []string `toml:"include" yaml:"include"`
	// Ignore drops matching files from the search set.
	Ignore []string `toml:"ignore" yaml:"ignore"`
	// Theme styles the preview.
	Theme Theme `toml:"theme" yaml:"theme"`
	// Keys overrides default key bindings, chord -> action name.
	Keys map[string]string `toml:"keys" yaml:"keys"`
}

// 🏭 Default returns the default configuration.
func Default() *Config {
	return &Config{
		AutoPairs: true,
		Include:   []string{},
		Ignore:    []string{},
		Theme:     DefaultTheme(),
		Keys:      map[string]string{},
	}
}

// 🎯 Load reads the config file at path, or the one at the standard
// location when path is empty. When path is empty and no file exists at the
// standard location, defaults are returned; an explicit path that cannot be
// read, or a malformed file, is an error.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		found, err := findConfig()
		if err != nil {
			return nil, err
		}
		if found == "" {
			logger.Debug().Msg("no config file, using defaults")
			return Default(), nil
		}
		path = found
	}

	logger.Debug().Str("path", path).Msg("loading configuration")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// 📂 Dir returns the lasr config directory, honoring XDG_CONFIG_HOME.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lasr"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "lasr"), nil
}

// findConfig locates lasr.toml (or lasr.yaml) under the config directory.
func findConfig() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	for _, name := range []string{"lasr.toml", "lasr.yaml", "lasr.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// 🔍 Validate checks field ranges and that every key binding resolves.
func (cfg *Config) Validate() error {
	if cfg.Threads < 0 {
		return errors.Errorf("threads must be >= 0, got %d", cfg.Threads)
	}
	if cfg.MaxFileSize < 0 {
		return errors.Errorf("max_file_size must be >= 0, got %d", cfg.MaxFileSize)
	}
	if _, err := cfg.Keymap(); err != nil {
		return err
	}
	return nil
}

// 🎹 Keymap resolves the effective bindings: defaults overlaid with the
// config's [keys] table. A config entry for an already-bound chord wins.
func (cfg *Config) Keymap() (map[keymap.Chord]keymap.Action, error) {
	keys := keymap.Default()
	for chord, action := range cfg.Keys {
		c, err := keymap.ParseChord(chord)
		if err != nil {
			return nil, errors.Errorf("invalid key binding: %w", err)
		}
		a, err := keymap.ParseAction(action)
		if err != nil {
			return nil, errors.Errorf("invalid key binding for %q: %w", chord, err)
		}
		keys[c] = a
	}
	return keys, nil
}

// 📝 Dump writes the configuration as TOML.
func (cfg *Config) Dump(w io.Writer) error {
	enc := toml.NewEncoder(w)
	if err := enc.Encode(cfg); err != nil {
		return errors.Errorf("encoding config: %w", err)
	}
	return nil
}

// 🔧 TOMLParser implements the Parser interface for TOML files.
type TOMLParser struct{}

func init() {
	Register(&TOMLParser{})
}

func (p *TOMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".toml")
}

func (p *TOMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Errorf("parsing TOML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// 🔧 YAMLParser implements the Parser interface for YAML files.
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}
