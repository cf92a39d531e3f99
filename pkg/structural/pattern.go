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
	"fmt"
	"regexp"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"gitlab.com/tozd/go/errors"
)

// Metavariables are rewritten to µ-prefixed identifiers before parsing, so
// the pattern text itself is a valid source fragment for the grammar. µ is a
// letter in every registered language's identifier set.
const (
	metaSingle = "µ"
	metaMulti  = "µµµ"
)

var metaToken = regexp.MustCompile(`\$(\$\$)?[A-Z][A-Za-z0-9_]*`)

// 🌳 pnode is one node of a compiled tree pattern.
type pnode struct {
	kind     string
	named    bool
	text     string // leaf token text; empty for interior nodes
	children []*pnode
	meta     string // metavariable name, "" for concrete nodes
	multi    bool   // $$$NAME: binds a run of consecutive siblings
}

// 📦 compiled is a pattern compiled against one grammar.
type compiled struct {
	root *pnode
	err  error
}

// 🎯 Pattern is a structural search pattern. Grammar-specific compilation is
// deferred until a file of that language is scanned, then cached; the cache
// is safe for concurrent workers.
type Pattern struct {
	raw        string
	ignoreCase bool

	mu     sync.Mutex
	byLang map[string]*compiled
}

// 🏭 New prepares a structural pattern. The pattern text is held as written;
// per-language compilation happens lazily in Match.
func New(raw string, ignoreCase bool) *Pattern {
	return &Pattern{
		raw:        raw,
		ignoreCase: ignoreCase,
		byLang:     map[string]*compiled{},
	}
}

// Raw returns the pattern source text.
func (p *Pattern) Raw() string {
	return p.raw
}

// rewriteMeta substitutes metavariable tokens with parseable placeholders.
func rewriteMeta(raw string) string {
	return metaToken.ReplaceAllStringFunc(raw, func(tok string) string {
		if strings.HasPrefix(tok, "$$$") {
			return metaMulti + tok[3:]
		}
		return metaSingle + tok[1:]
	})
}

// metaName decodes a placeholder identifier, returning the metavariable name
// and whether it is a multi ($$$) binding.
func metaName(text string) (string, bool, bool) {
	if strings.HasPrefix(text, metaMulti) {
		return text[len(metaMulti):], true, true
	}
	if strings.HasPrefix(text, metaSingle) {
		return text[len(metaSingle):], false, true
	}
	return "", false, false
}

// Some grammars reject bare fragments (a call is not a Go top-level
// declaration), so the pattern is retried inside neutral wrappers until one
// parse succeeds. The %s span is then located and the wrapper discarded.
var patternContexts = map[string][]string{
	"go":   {"%s", "package µp\nfunc µf() {\n%s\n}", "package µp\n%s"},
	"rust": {"%s", "fn µf() {\n%s\n}"},
	"java": {"%s", "class µC {\nvoid µm() {\n%s\n}\n}", "class µC {\n%s\n}"},
}

// compileFor compiles the pattern against one grammar, caching the result.
func (p *Pattern) compileFor(lang *sitter.Language, langName string) (*pnode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.byLang[langName]; ok {
		return c.root, c.err
	}

	root, err := parsePattern(p.raw, lang, langName)
	p.byLang[langName] = &compiled{root: root, err: err}
	return root, err
}

// parsePattern parses the rewritten pattern text and reduces it to the
// deepest node that still spans the whole pattern.
func parsePattern(raw string, lang *sitter.Language, langName string) (*pnode, error) {
	rewritten := rewriteMeta(raw)

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, errors.Errorf("setting pattern language: %w", err)
	}

	contexts, ok := patternContexts[langName]
	if !ok {
		contexts = []string{"%s"}
	}

	for _, tpl := range contexts {
		full := fmt.Sprintf(tpl, rewritten)
		src := []byte(full)

		tree := parser.Parse(src, nil)
		if tree == nil {
			continue
		}
		root := tree.RootNode()
		if root.HasError() {
			tree.Close()
			continue
		}

		start := uint(strings.Index(full, rewritten))
		end := start + uint(len(rewritten))
		node := root.NamedDescendantForByteRange(start, end)
		if node == nil {
			tree.Close()
			continue
		}
		for isWrapper(node.Kind()) && node.NamedChildCount() == 1 {
			node = node.NamedChild(0)
		}

		pn := buildPNode(node, src)
		tree.Close()
		return pn, nil
	}

	return nil, errors.Errorf("pattern does not parse as %s: %s", langName, raw)
}

// isWrapper reports grammar container kinds that only delegate to a single
// statement or expression.
func isWrapper(kind string) bool {
	switch kind {
	case "source_file", "program", "module", "translation_unit",
		"expression_statement", "block", "statement_block":
		return true
	}
	return false
}

// buildPNode converts a parsed pattern subtree into a matcher tree.
func buildPNode(node *sitter.Node, src []byte) *pnode {
	text := string(src[node.StartByte():node.EndByte()])

	if node.IsNamed() && node.ChildCount() == 0 {
		if name, multi, ok := metaName(text); ok {
			return &pnode{meta: name, multi: multi, named: true}
		}
		return &pnode{kind: node.Kind(), named: true, text: text}
	}

	if !node.IsNamed() {
		return &pnode{kind: node.Kind(), text: text}
	}

	pn := &pnode{kind: node.Kind(), named: true}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if isTrivia(child.Kind()) {
			continue
		}
		pn.children = append(pn.children, buildPNode(child, src))
	}
	if len(pn.children) == 0 {
		pn.text = text
	}
	return pn
}

// isTrivia reports node kinds ignored during matching.
func isTrivia(kind string) bool {
	switch kind {
	case "comment", "line_comment", "block_comment", "doc_comment":
		return true
	}
	return false
}
