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

package matcher

import (
	"bytes"
	"context"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/rcorre/lasr/pkg/pattern"
	"github.com/rcorre/lasr/pkg/structural"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	// Binary detection looks for a NUL byte in the first 8 KiB.
	binarySniffLen = 8 * 1024

	// How many matches to produce between cancellation checks.
	cancelCheckInterval = 256

	// DefaultMaxFileSize caps per-file scan latency.
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// ⏭️ SkipReason says why a file produced no matches without being scanned.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipBinary      SkipReason = "binary"
	SkipTooLarge    SkipReason = "too_large"
	SkipNoLanguage  SkipReason = "no_language"
	SkipInvalidUTF8 SkipReason = "invalid_utf8"
	SkipBadPattern  SkipReason = "pattern_unsupported"
)

// 📍 Match is one preview entry: a byte span in the file, the captures that
// bound it, and the fully-expanded replacement text.
type Match struct {
	Start       int
	End         int
	Caps        pattern.Captures
	Replacement []byte
}

// 📦 FileResult is everything one file contributed to a generation.
// All matches share the byte content captured at scan time; Hash identifies
// that content so commit can detect edits made under our feet.
type FileResult struct {
	Path       string
	Index      int
	Generation uint64
	Matches    []Match
	Hash       uint64
	Size       int64
	Skip       SkipReason
	Err        error
}

// 🔍 FileMatcher runs one compiled pattern + template over files.
// It is immutable and shared by all workers of a SearchJob.
type FileMatcher struct {
	pat         *pattern.Pattern
	tmpl        *pattern.Template
	maxFileSize int64
}

// 🏭 New creates a FileMatcher. maxFileSize <= 0 selects the default cap.
func New(pat *pattern.Pattern, tmpl *pattern.Template, maxFileSize int64) *FileMatcher {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &FileMatcher{
		pat:         pat,
		tmpl:        tmpl,
		maxFileSize: maxFileSize,
	}
}

// 🏃 MatchFile reads path once and produces its FileResult. Read errors and
// skips are recorded on the result, never returned; the scan continues with
// other files.
func (fm *FileMatcher) MatchFile(ctx context.Context, path string, index int, gen uint64) FileResult {
	res := FileResult{
		Path:       path,
		Index:      index,
		Generation: gen,
	}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = errors.Errorf("stat: %w", err)
		return res
	}
	res.Size = info.Size()
	if info.Size() > fm.maxFileSize {
		res.Skip = SkipTooLarge
		return res
	}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = errors.Errorf("reading file: %w", err)
		return res
	}

	sniff := data
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		res.Skip = SkipBinary
		return res
	}

	res.Hash = xxhash.Sum64(data)

	switch fm.pat.Kind() {
	case pattern.Structural:
		fm.matchStructural(ctx, path, data, &res)
	default:
		fm.matchTextual(ctx, data, &res)
	}
	return res
}

// matchTextual scans bytes with the compiled regexp, checking cancellation
// between matches so long files cannot stall a dead generation.
func (fm *FileMatcher) matchTextual(ctx context.Context, data []byte, res *FileResult) {
	pos := 0
	for n := 0; ; n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				res.Err = err
				return
			}
		}
		occ, ok := fm.pat.Find(data, pos)
		if !ok {
			return
		}
		res.Matches = append(res.Matches, Match{
			Start:       occ.Start,
			End:         occ.End,
			Caps:        occ.Caps,
			Replacement: fm.tmpl.Expand(occ.Caps),
		})
		pos = pattern.Advance(data, occ)
	}
}

// matchStructural parses the file and matches the tree pattern. Files the
// structural backend cannot handle are recorded as skips.
func (fm *FileMatcher) matchStructural(ctx context.Context, path string, data []byte, res *FileResult) {
	occs, err := fm.pat.Tree().Match(ctx, path, data)
	switch {
	case err == nil:
	case errors.Is(err, structural.ErrNoLanguage):
		res.Skip = SkipNoLanguage
		return
	case errors.Is(err, structural.ErrInvalidUTF8):
		res.Skip = SkipInvalidUTF8
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		res.Err = err
		return
	default:
		// The pattern is mid-edit and does not yet parse for this
		// language; expected while the user types.
		zerolog.Ctx(ctx).Debug().Str("path", path).Err(err).Msg("structural pattern unsupported")
		res.Skip = SkipBadPattern
		return
	}

	for _, occ := range occs {
		caps := pattern.Captures{
			Whole: data[occ.Start:occ.End],
			Named: occ.Bindings,
		}
		res.Matches = append(res.Matches, Match{
			Start:       occ.Start,
			End:         occ.End,
			Caps:        caps,
			Replacement: fm.tmpl.Expand(caps),
		})
	}
}
