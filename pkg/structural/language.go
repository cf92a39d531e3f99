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
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// 🗺️ extLanguages maps file extensions to grammar constructors. Constructors
// run once; the compiled grammars are shared by every worker.
var extLanguages = map[string]struct {
	name string
	load func() *sitter.Language
}{
	".go":   {"go", func() *sitter.Language { return sitter.NewLanguage(tree_sitter_go.Language()) }},
	".py":   {"python", func() *sitter.Language { return sitter.NewLanguage(tree_sitter_python.Language()) }},
	".pyi":  {"python", func() *sitter.Language { return sitter.NewLanguage(tree_sitter_python.Language()) }},
	".js":   {"javascript", func() *sitter.Language { return sitter.NewLanguage(tree_sitter_javascript.Language()) }},
	".jsx":  {"javascript", func() *sitter.Language { return sitter.NewLanguage(tree_sitter_javascript.Language()) }},
	".mjs":  {"javascript", func() *sitter.Language { return sitter.NewLanguage(tree_sitter_javascript.Language()) }},
	".cjs":  {"javascript", func() *sitter.Language { return sitter.NewLanguage(tree_sitter_javascript.Language()) }},
	".ts":   {"typescript", func() *sitter.Language { return sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) }},
	".tsx":  {"typescript", func() *sitter.Language { return sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) }},
	".rs":   {"rust", func() *sitter.Language { return sitter.NewLanguage(tree_sitter_rust.Language()) }},
	".java": {"java", func() *sitter.Language { return sitter.NewLanguage(tree_sitter_java.Language()) }},
}

var (
	langMu    sync.Mutex
	langCache = map[string]*sitter.Language{}
)

// 🔍 LanguageForPath returns the grammar for path's extension, or ok=false
// when no language is registered for it.
func LanguageForPath(path string) (*sitter.Language, string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	entry, ok := extLanguages[ext]
	if !ok {
		return nil, "", false
	}

	langMu.Lock()
	defer langMu.Unlock()
	lang, ok := langCache[entry.name]
	if !ok {
		lang = entry.load()
		langCache[entry.name] = lang
	}
	return lang, entry.name, true
}
