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

// Package walker enumerates candidate files. The order is stable for a
// given input (argument order, then lexical within each directory) and
// defines the preview display order.
package walker

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ⚙️ Options filter the enumeration.
type Options struct {
	// Include restricts files to these doublestar globs when non-empty.
	Include []string
	// Ignore drops files matching any of these globs.
	Ignore []string
}

// 🚶 Enumerate expands paths into an ordered list of existing files,
// recursing into directories. Dot-directories (.git and friends) are not
// descended into. Unreadable entries are logged and skipped; a nonexistent
// argument path is an error.
func Enumerate(ctx context.Context, paths []string, opts Options) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := map[string]bool{}
	var files []string

	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		if !matches(path, opts) {
			return
		}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		// WalkDir visits entries in lexical order, which keeps the
		// enumeration stable across runs.
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn().Str("path", path).Err(err).Msg("skipping unreadable path")
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, errors.Errorf("walking %s: %w", root, err)
		}
	}

	logger.Debug().Int("files", len(files)).Msg("enumerated search set")
	return files, nil
}

// matches applies the include and ignore globs to a slash path. Patterns
// match against the full path or the base name, so "*.py" works without a
// leading "**/".
func matches(file string, opts Options) bool {
	p := filepath.ToSlash(file)
	for _, pat := range opts.Ignore {
		if globMatch(pat, p) {
			return false
		}
	}
	if len(opts.Include) == 0 {
		return true
	}
	for _, pat := range opts.Include {
		if globMatch(pat, p) {
			return true
		}
	}
	return false
}

func globMatch(pat, p string) bool {
	if ok, err := doublestar.Match(pat, p); err == nil && ok {
		return true
	}
	if ok, err := doublestar.Match(pat, path.Base(p)); err == nil && ok {
		return true
	}
	return false
}
