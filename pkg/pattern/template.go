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
	"bytes"
	"strconv"
	"strings"
)

// 📝 segment is one piece of a parsed replacement: exactly one of lit,
// a numbered back-reference, or a named back-reference.
type segment struct {
	lit  []byte
	idx  int // numbered group, -1 if unused
	name string
}

// 📝 Template is the parsed form of the replacement text. References to
// groups the match did not bind expand to the empty string.
type Template struct {
	raw  string
	segs []segment
}

// 🏭 CompileReplacement parses replace into a Template. Parsing is total:
// any malformed reference is taken literally, so this never fails.
//
// Recognized forms:
//
//	$0..$N, ${N}     numbered back-references
//	$name, ${name}   named back-references (covers $NAME metavariables)
//	$$$NAME          structural multi-metavariable reference
//	$$               a literal $
//	\n, \t, \\       escapes
func CompileReplacement(replace string) *Template {
	t := &Template{raw: replace}
	var lit bytes.Buffer

	flush := func() {
		if lit.Len() > 0 {
			t.segs = append(t.segs, segment{lit: append([]byte(nil), lit.Bytes()...), idx: -1})
			lit.Reset()
		}
	}

	s := replace
	for i := 0; i < len(s); {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				lit.WriteByte('\n')
				i += 2
				continue
			case 't':
				lit.WriteByte('\t')
				i += 2
				continue
			case '\\':
				lit.WriteByte('\\')
				i += 2
				continue
			}
		}
		if c != '$' {
			lit.WriteByte(c)
			i++
			continue
		}

		// $$$NAME binds a multi-metavariable; check before the $$ escape.
		if i+3 < len(s) && s[i+1] == '$' && s[i+2] == '$' && isUpper(s[i+3]) {
			name, n := scanName(s[i+3:])
			flush()
			t.segs = append(t.segs, segment{idx: -1, name: name})
			i += 3 + n
			continue
		}
		if i+1 < len(s) && s[i+1] == '$' {
			lit.WriteByte('$')
			i += 2
			continue
		}

		rest := s[i+1:]
		if len(rest) == 0 {
			lit.WriteByte('$')
			i++
			continue
		}

		// Brace-delimited: ${2}, ${name}.
		if rest[0] == '{' {
			if end := strings.IndexByte(rest, '}'); end > 1 {
				inner := rest[1:end]
				flush()
				if idx, err := strconv.Atoi(inner); err == nil && idx >= 0 {
					t.segs = append(t.segs, segment{idx: idx})
				} else {
					t.segs = append(t.segs, segment{idx: -1, name: inner})
				}
				i += 1 + end + 1
				continue
			}
			lit.WriteByte('$')
			i++
			continue
		}

		if isDigit(rest[0]) {
			num, n := scanDigits(rest)
			flush()
			t.segs = append(t.segs, segment{idx: num})
			i += 1 + n
			continue
		}

		if isNameStart(rest[0]) {
			name, n := scanName(rest)
			flush()
			t.segs = append(t.segs, segment{idx: -1, name: name})
			i += 1 + n
			continue
		}

		lit.WriteByte('$')
		i++
	}
	flush()
	return t
}

// Raw returns the source text the template was parsed from.
func (t *Template) Raw() string {
	return t.raw
}

// 🔄 Expand renders the template against one occurrence's captures.
func (t *Template) Expand(caps Captures) []byte {
	var out bytes.Buffer
	for _, seg := range t.segs {
		switch {
		case seg.lit != nil:
			out.Write(seg.lit)
		case seg.name != "":
			out.Write(caps.Named[seg.name])
		case seg.idx == 0:
			out.Write(caps.Whole)
		case seg.idx > 0 && seg.idx < len(caps.Indexed):
			out.Write(caps.Indexed[seg.idx])
		}
	}
	return out.Bytes()
}

// 🔍 MetaNames returns the named references the template expands, in order.
func (t *Template) MetaNames() []string {
	var names []string
	for _, seg := range t.segs {
		if seg.name != "" {
			names = append(names, seg.name)
		}
	}
	return names
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || isUpper(c)
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c)
}

func scanDigits(s string) (int, int) {
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	num, _ := strconv.Atoi(s[:n])
	return num, n
}

func scanName(s string) (string, int) {
	n := 0
	for n < len(s) && isNameChar(s[n]) {
		n++
	}
	return s[:n], n
}

