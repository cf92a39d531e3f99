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

// Package engine owns the evolving query and turns each input change into a
// fresh generation of search work. It runs on a single goroutine; the UI
// feeds it Actions and observes Updates, workers never touch its state.
package engine

import (
	"context"
	"time"

	"github.com/rcorre/lasr/pkg/commit"
	"github.com/rcorre/lasr/pkg/keymap"
	"github.com/rcorre/lasr/pkg/matcher"
	"github.com/rcorre/lasr/pkg/pattern"
	"github.com/rcorre/lasr/pkg/search"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces keystroke bursts before scheduling a rescan.
const DefaultDebounce = 50 * time.Millisecond

// 🎯 Field identifies which input line has focus.
type Field int

const (
	FieldFind Field = iota
	FieldReplace
)

// 🎬 Action is one editor action, with the rune payload for InsertChar.
type Action struct {
	Kind keymap.Action
	Ch   rune
}

// Insert builds an InsertChar action.
func Insert(ch rune) Action {
	return Action{Kind: keymap.InsertChar, Ch: ch}
}

// 📸 Snapshot is the input state the UI renders.
type Snapshot struct {
	Find          string
	Replace       string
	FindCursor    int
	ReplaceCursor int
	Focus         Field
	IgnoreCase    bool
	Generation    uint64
}

// 📨 Update is one message on the engine's output stream. At most one of
// File, CompileErr, and Report is set; an update with none of them carries
// only an input change or an empty find. Input accompanies every message.
type Update struct {
	Generation uint64
	Input      Snapshot
	File       *matcher.FileResult
	CompileErr error
	Report     *commit.Report
}

// ⚙️ Config tunes the engine.
type Config struct {
	Debounce    time.Duration // 0 selects the default
	Workers     int
	ReorderCap  int
	MaxFileSize int64
	AutoPairs   bool
	IgnoreCase  bool // initial state
}

// searchJob abstracts search.Job for tests.
type searchJob interface {
	Start(ctx context.Context)
	Cancel()
	Results() <-chan matcher.FileResult
	Generation() uint64
}

// committer abstracts commit.Committer for tests.
type committer interface {
	Apply(ctx context.Context, results []matcher.FileResult) commit.Report
}

// 🧠 Engine owns InputState, the compiled pattern artifacts, and at most one
// in-flight SearchJob.
type Engine struct {
	cfg   Config
	files []string

	find       lineInput
	replace    lineInput
	focus      Field
	ignoreCase bool
	generation uint64

	pat  *pattern.Pattern
	tmpl *pattern.Template

	actions chan Action
	updates chan Update

	// Test seams; production wiring in New.
	newJob func(search.Params) searchJob
	commit committer
}

// 🏭 New creates an engine over the enumerated files.
func New(cfg Config, files []string) *Engine {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Engine{
		cfg:        cfg,
		files:      files,
		ignoreCase: cfg.IgnoreCase,
		actions:    make(chan Action, 64),
		updates:    make(chan Update, 64),
		newJob:     func(p search.Params) searchJob { return search.New(p) },
		commit:     commit.New(),
	}
}

// Apply queues one action for the engine goroutine.
func (e *Engine) Apply(a Action) {
	e.actions <- a
}

// Updates streams results, compile errors, and the final commit report for
// the latest generation only. Closed when Run returns.
func (e *Engine) Updates() <-chan Update {
	return e.updates
}

func (e *Engine) snapshot() Snapshot {
	return Snapshot{
		Find:          e.find.String(),
		Replace:       e.replace.String(),
		FindCursor:    e.find.Cursor(),
		ReplaceCursor: e.replace.Cursor(),
		Focus:         e.focus,
		IgnoreCase:    e.ignoreCase,
		Generation:    e.generation,
	}
}

func (e *Engine) emit(u Update) {
	u.Generation = e.generation
	u.Input = e.snapshot()
	e.updates <- u
}

// 🏃 Run is the engine event loop. It returns after exit or a completed
// confirm, closing the update stream.
func (e *Engine) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	defer close(e.updates)

	debounce := time.NewTimer(e.cfg.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	armed := false

	var (
		job        searchJob
		results    <-chan matcher.FileResult
		resultSet  []matcher.FileResult
		compileErr error
	)
	defer func() {
		if job != nil {
			job.Cancel()
		}
	}()

	rescan := func() {
		armed = false
		if job != nil {
			job.Cancel()
			job, results = nil, nil
		}
		resultSet = nil

		compileErr = e.recompile()
		if compileErr != nil {
			logger.Info().Err(compileErr).Msg("pattern does not compile")
			e.emit(Update{CompileErr: compileErr})
			return
		}
		if e.pat == nil {
			// Empty find matches nothing anywhere.
			e.emit(Update{})
			return
		}
		job = e.newJob(search.Params{
			Matcher:    matcher.New(e.pat, e.tmpl, e.cfg.MaxFileSize),
			Files:      e.files,
			Generation: e.generation,
			Workers:    e.cfg.Workers,
			ReorderCap: e.cfg.ReorderCap,
		})
		job.Start(ctx)
		results = job.Results()
	}

	arm := func() {
		if armed && !debounce.Stop() {
			<-debounce.C
		}
		debounce.Reset(e.cfg.Debounce)
		armed = true
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case a := <-e.actions:
			switch a.Kind {
			case keymap.Exit:
				logger.Debug().Msg("exit requested")
				return nil
			case keymap.Confirm:
				if armed {
					rescan()
				}
				if compileErr != nil {
					// Refuse to commit a broken pattern; stay editable.
					e.emit(Update{CompileErr: compileErr})
					continue
				}
				rep := e.confirm(ctx, results, resultSet)
				e.emit(Update{Report: &rep})
				return nil
			default:
				if e.applyEdit(a) {
					e.generation++
					arm()
				} else {
					e.emit(Update{})
				}
			}

		case <-debounce.C:
			armed = false
			rescan()

		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			if res.Generation != e.generation {
				continue
			}
			resultSet = append(resultSet, res)
			r := res
			e.emit(Update{File: &r})
		}
	}
}

// applyEdit mutates InputState per the action, returning true when the
// change affects the query (find, replace, or ignore_case) and so requires
// a rescan.
func (e *Engine) applyEdit(a Action) bool {
	field := &e.find
	if e.focus == FieldReplace {
		field = &e.replace
	}

	switch a.Kind {
	case keymap.Noop:
		return false
	case keymap.ToggleSearchReplace:
		if e.focus == FieldFind {
			e.focus = FieldReplace
		} else {
			e.focus = FieldFind
		}
		return false
	case keymap.ToggleIgnoreCase:
		e.ignoreCase = !e.ignoreCase
		return true
	case keymap.CursorLeft:
		field.cursorLeft()
		return false
	case keymap.CursorRight:
		field.cursorRight()
		return false
	case keymap.CursorHome:
		field.cursorHome()
		return false
	case keymap.CursorEnd:
		field.cursorEnd()
		return false
	case keymap.DeleteChar:
		return field.deleteChar()
	case keymap.DeleteCharBackward:
		return field.deleteCharBackward(e.cfg.AutoPairs)
	case keymap.DeleteWord:
		return field.deleteWord()
	case keymap.DeleteToEndOfLine:
		return field.deleteToEndOfLine()
	case keymap.DeleteLine:
		return field.deleteLine()
	case keymap.InsertChar:
		return field.insert(a.Ch, e.cfg.AutoPairs)
	}
	return false
}

// recompile rebuilds the pattern and template for the current inputs.
// A nil pattern with nil error means the find text is empty.
func (e *Engine) recompile() error {
	e.pat, e.tmpl = nil, nil
	find := e.find.String()
	if find == "" {
		return nil
	}
	p, err := pattern.Compile(find, e.ignoreCase)
	if err != nil {
		return err
	}
	e.pat = p
	e.tmpl = pattern.CompileReplacement(e.replace.String())
	return nil
}

// confirm freezes the query, drains the in-flight job, and hands the final
// result set to the committer.
func (e *Engine) confirm(ctx context.Context, results <-chan matcher.FileResult, resultSet []matcher.FileResult) commit.Report {
	logger := zerolog.Ctx(ctx)
	if results != nil {
		for res := range results {
			if res.Generation == e.generation {
				resultSet = append(resultSet, res)
				r := res
				e.emit(Update{File: &r})
			}
		}
	}

	logger.Info().Uint64("generation", e.generation).Int("files", len(resultSet)).Msg("committing")
	return e.commit.Apply(ctx, resultSet)
}
