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

package structural

import (
	"context"
	"strings"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNoLanguage means no grammar is registered for the file's extension.
	ErrNoLanguage = errors.Base("no language for file")
	// ErrInvalidUTF8 means the file cannot be parsed as a source tree.
	ErrInvalidUTF8 = errors.Base("file is not valid UTF-8")
)

// How many tree nodes to visit between cancellation checks.
const cancelCheckInterval = 256

// 📍 Match is one structural occurrence: the matched node's byte span and
// the source text bound to each metavariable.
type Match struct {
	Start    int
	End      int
	Bindings map[string][]byte
}

// 🔍 Match runs the pattern over one file's source. Files with no registered
// language or invalid UTF-8 return ErrNoLanguage / ErrInvalidUTF8; callers
// skip those. Matches are in ascending byte order and never overlap: once a
// node matches, its descendants are not considered.
func (p *Pattern) Match(ctx context.Context, path string, source []byte) ([]Match, error) {
	if !utf8.Valid(source) {
		return nil, errors.WithStack(ErrInvalidUTF8)
	}
	lang, langName, ok := LanguageForPath(path)
	if !ok {
		return nil, errors.WithStack(ErrNoLanguage)
	}

	root, err := p.compileFor(lang, langName)
	if err != nil {
		return nil, errors.Errorf("compiling pattern for %s: %w", langName, err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, errors.Errorf("setting language: %w", err)
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errors.Errorf("parsing %s", path)
	}
	defer tree.Close()

	m := &treeMatcher{
		pat:        root,
		src:        source,
		ignoreCase: p.ignoreCase,
		ctx:        ctx,
	}
	m.walk(tree.RootNode())
	if m.err != nil {
		return nil, m.err
	}
	return m.matches, nil
}

// 🌲 treeMatcher carries one file's matching state.
type treeMatcher struct {
	pat        *pnode
	src        []byte
	ignoreCase bool
	ctx        context.Context

	visited int
	err     error
	matches []Match
}

// walk tries the pattern at every node in preorder, skipping the subtree of
// any node that matches.
func (m *treeMatcher) walk(node *sitter.Node) {
	if m.err != nil {
		return
	}
	m.visited++
	if m.visited%cancelCheckInterval == 0 {
		if err := m.ctx.Err(); err != nil {
			m.err = err
			return
		}
	}

	binds := map[string][]byte{}
	if m.matchNode(m.pat, node, binds) {
		m.matches = append(m.matches, Match{
			Start:    int(node.StartByte()),
			End:      int(node.EndByte()),
			Bindings: binds,
		})
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		m.walk(node.Child(i))
	}
}

// matchNode matches one pattern node against one tree node, binding
// metavariables into binds.
func (m *treeMatcher) matchNode(pn *pnode, node *sitter.Node, binds map[string][]byte) bool {
	if pn.meta != "" && !pn.multi {
		if !node.IsNamed() {
			return false
		}
		return m.bind(binds, pn.meta, m.src[node.StartByte():node.EndByte()])
	}

	if !pn.named {
		return !node.IsNamed() && node.Kind() == pn.kind
	}
	if !node.IsNamed() || node.Kind() != pn.kind {
		return false
	}

	if len(pn.children) == 0 {
		text := string(m.src[node.StartByte():node.EndByte()])
		if m.ignoreCase && isIdentifierKind(pn.kind) {
			return strings.EqualFold(pn.text, text)
		}
		return pn.text == text
	}

	var kids []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if isTrivia(child.Kind()) {
			continue
		}
		kids = append(kids, child)
	}
	return m.matchSeq(pn.children, kids, binds)
}

// matchSeq matches a pattern child sequence against a node sequence.
// Multi metavariables absorb runs of siblings, shortest first, with
// backtracking on trial bindings.
func (m *treeMatcher) matchSeq(pats []*pnode, nodes []*sitter.Node, binds map[string][]byte) bool {
	if len(pats) == 0 {
		return len(nodes) == 0
	}

	p0 := pats[0]
	if p0.meta != "" && p0.multi {
		for k := 0; k <= len(nodes); k++ {
			trial := cloneBinds(binds)
			var text []byte
			if k > 0 {
				text = m.src[nodes[0].StartByte():nodes[k-1].EndByte()]
			}
			if !m.bind(trial, p0.meta, text) {
				continue
			}
			if m.matchSeq(pats[1:], nodes[k:], trial) {
				adoptBinds(binds, trial)
				return true
			}
		}
		return false
	}

	if len(nodes) == 0 {
		return false
	}
	trial := cloneBinds(binds)
	if m.matchNode(p0, nodes[0], trial) && m.matchSeq(pats[1:], nodes[1:], trial) {
		adoptBinds(binds, trial)
		return true
	}
	return false
}

// bind records a metavariable binding; rebinding requires equal text.
func (m *treeMatcher) bind(binds map[string][]byte, name string, text []byte) bool {
	if prev, ok := binds[name]; ok {
		return string(prev) == string(text)
	}
	if text == nil {
		text = []byte{}
	}
	binds[name] = text
	return true
}

func isIdentifierKind(kind string) bool {
	return strings.Contains(kind, "identifier")
}

func cloneBinds(binds map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(binds))
	for k, v := range binds {
		out[k] = v
	}
	return out
}

func adoptBinds(dst, src map[string][]byte) {
	for k, v := range src {
		dst[k] = v
	}
}
