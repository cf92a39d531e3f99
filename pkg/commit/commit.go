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

// Package commit applies a confirmed generation's replacements to disk.
// Each file is rewritten through a sibling temp file and an atomic rename;
// there is no cross-file lock and no partial write visible to readers.
package commit

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/rcorre/lasr/pkg/matcher"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrContentChanged means the file was edited between scan and commit.
var ErrContentChanged = errors.Base("file changed since scan")

// ⚠️ FileError records one file's commit failure.
type FileError struct {
	Path string
	Err  error
}

// 📊 Report aggregates the outcome of one commit.
type Report struct {
	FilesChanged int
	FilesSkipped int
	Errors       []FileError
}

// 🔏 Committer rewrites files for a confirmed result set.
type Committer struct{}

// 🏭 New creates a Committer.
func New() *Committer {
	return &Committer{}
}

// 🏃 Apply splices each file's precomputed replacements into its content and
// rewrites it durably. Files fail independently; the scan's other files
// proceed. Files whose content changed since the scan are refused and
// counted as skipped.
func (c *Committer) Apply(ctx context.Context, results []matcher.FileResult) Report {
	logger := zerolog.Ctx(ctx)
	var rep Report
	for _, res := range results {
		if len(res.Matches) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			rep.Errors = append(rep.Errors, FileError{Path: res.Path, Err: err})
			continue
		}
		if err := c.applyFile(res); err != nil {
			logger.Warn().Str("path", res.Path).Err(err).Msg("commit failed for file")
			if errors.Is(err, ErrContentChanged) {
				rep.FilesSkipped++
			}
			rep.Errors = append(rep.Errors, FileError{Path: res.Path, Err: err})
			continue
		}
		logger.Info().Str("path", res.Path).Int("replacements", len(res.Matches)).Msg("file rewritten")
		rep.FilesChanged++
	}
	return rep
}

// applyFile rewrites a single file.
func (c *Committer) applyFile(res matcher.FileResult) error {
	data, err := os.ReadFile(res.Path)
	if err != nil {
		return errors.Errorf("re-reading file: %w", err)
	}
	if xxhash.Sum64(data) != res.Hash {
		return errors.WithStack(ErrContentChanged)
	}

	content, err := splice(data, res.Matches)
	if err != nil {
		return err
	}

	info, err := os.Stat(res.Path)
	if err != nil {
		return errors.Errorf("stat: %w", err)
	}

	dir := filepath.Dir(res.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(res.Path)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Errorf("flushing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return errors.Errorf("preserving permissions: %w", err)
	}
	if err := os.Rename(tmpPath, res.Path); err != nil {
		return errors.Errorf("renaming over original: %w", err)
	}
	return nil
}

// splice builds the new content by substituting each match's replacement at
// its span. Spans index the pre-edit content and are processed left to
// right.
func splice(data []byte, matches []matcher.Match) ([]byte, error) {
	var out bytes.Buffer
	last := 0
	for _, m := range matches {
		if m.Start < last || m.End < m.Start || m.End > len(data) {
			return nil, errors.Errorf("match span [%d,%d) out of order or out of bounds", m.Start, m.End)
		}
		out.Write(data[last:m.Start])
		out.Write(m.Replacement)
		last = m.End
	}
	out.Write(data[last:])
	return out.Bytes(), nil
}
