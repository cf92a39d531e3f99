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

package pattern

import (
	"regexp"
	"unicode/utf8"

	"github.com/rcorre/lasr/pkg/structural"
)

// 🎯 Kind selects the matching backend for a compiled pattern.
type Kind int

const (
	// Textual patterns are regular expressions matched over bytes.
	Textual Kind = iota
	// Structural patterns are tree patterns matched against a syntax tree.
	Structural
)

func (k Kind) String() string {
	if k == Structural {
		return "structural"
	}
	return "textual"
}

// ⚠️ CompileError carries the diagnostic from the underlying pattern engine.
// It is surfaced to the UI as editable-state feedback, never as a crash.
type CompileError struct {
	Detail string
}

func (e *CompileError) Error() string {
	return e.Detail
}

// A `$` immediately followed by an uppercase letter marks a metavariable.
// This also covers `$$$X`, whose tail contains `$X`.
var structuralToken = regexp.MustCompile(`\$[A-Z]`)

// 🔍 IsStructural reports whether find contains a metavariable token and so
// selects the structural backend. The rule is total: every string classifies
// deterministically before any compilation happens.
func IsStructural(find string) bool {
	return structuralToken.MatchString(find)
}

// 📦 Captures holds the groups bound by one occurrence.
type Captures struct {
	// Whole is the full matched text.
	Whole []byte
	// Indexed holds numbered groups; entry 0 is the whole match and
	// unmatched groups are nil.
	Indexed [][]byte
	// Named holds named groups and structural metavariable bindings.
	Named map[string][]byte
}

// 📍 Occurrence is one match: a byte span plus its captures.
type Occurrence struct {
	Start int
	End   int
	Caps  Captures
}

// 🎯 Pattern is a compiled search artifact, a tagged variant over the
// textual and structural backends. Immutable once compiled; safe to share
// across worker goroutines.
type Pattern struct {
	kind       Kind
	raw        string
	ignoreCase bool

	// Textual state.
	re    *regexp.Regexp
	names []string

	// Structural state.
	tree *structural.Pattern
}

// 🏭 Compile parses find into a Pattern, selecting the backend per
// IsStructural. A malformed textual pattern yields a *CompileError carrying
// the regexp engine's diagnostic.
func Compile(find string, ignoreCase bool) (*Pattern, error) {
	if IsStructural(find) {
		return &Pattern{
			kind:       Structural,
			raw:        find,
			ignoreCase: ignoreCase,
			tree:       structural.New(find, ignoreCase),
		}, nil
	}

	src := find
	if ignoreCase {
		src = "(?i)" + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, &CompileError{Detail: err.Error()}
	}
	return &Pattern{
		kind:       Textual,
		raw:        find,
		ignoreCase: ignoreCase,
		re:         re,
		names:      re.SubexpNames(),
	}, nil
}

// Kind returns the backend tag.
func (p *Pattern) Kind() Kind {
	return p.kind
}

// Raw returns the source text the pattern was compiled from.
func (p *Pattern) Raw() string {
	return p.raw
}

// IgnoreCase reports whether the pattern matches case-insensitively.
func (p *Pattern) IgnoreCase() bool {
	return p.ignoreCase
}

// Tree returns the structural backend, nil for Textual patterns.
func (p *Pattern) Tree() *structural.Pattern {
	return p.tree
}

// 🔍 Find returns the first textual occurrence at or after pos.
// Callers iterate with Advance so zero-length matches cannot loop.
// Only valid for Textual patterns.
func (p *Pattern) Find(data []byte, pos int) (Occurrence, bool) {
	if pos > len(data) {
		return Occurrence{}, false
	}
	loc := p.re.FindSubmatchIndex(data[pos:])
	if loc == nil {
		return Occurrence{}, false
	}

	occ := Occurrence{
		Start: pos + loc[0],
		End:   pos + loc[1],
	}
	occ.Caps.Whole = data[occ.Start:occ.End]
	occ.Caps.Indexed = make([][]byte, len(loc)/2)
	for i := 0; i < len(loc)/2; i++ {
		if loc[2*i] < 0 {
			continue
		}
		occ.Caps.Indexed[i] = data[pos+loc[2*i] : pos+loc[2*i+1]]
	}
	for i, name := range p.names {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		if occ.Caps.Named == nil {
			occ.Caps.Named = map[string][]byte{}
		}
		occ.Caps.Named[name] = data[pos+loc[2*i] : pos+loc[2*i+1]]
	}
	return occ, true
}

// ⏭️ Advance returns the scan position following occ: the end of a non-empty
// match, or one code point past an empty one.
func Advance(data []byte, occ Occurrence) int {
	if occ.End > occ.Start {
		return occ.End
	}
	if occ.Start >= len(data) {
		return occ.Start + 1
	}
	_, size := utf8.DecodeRune(data[occ.Start:])
	return occ.Start + size
}
