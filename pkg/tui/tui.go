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

// Package tui renders the live preview. It owns no search state: key events
// become engine Actions, and the view is drawn from engine Updates.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rcorre/lasr/pkg/commit"
	"github.com/rcorre/lasr/pkg/config"
	"github.com/rcorre/lasr/pkg/engine"
	"github.com/rcorre/lasr/pkg/keymap"
	"github.com/rcorre/lasr/pkg/matcher"
	"gitlab.com/tozd/go/errors"
)

// updateMsg wraps one engine update for bubbletea.
type updateMsg engine.Update

// doneMsg signals that the engine's update stream closed.
type doneMsg struct{}

// 🖼️ Model is the bubbletea model for the preview screen.
type Model struct {
	eng   *engine.Engine
	keys  map[keymap.Chord]keymap.Action
	theme config.Theme

	snap       engine.Snapshot
	results    []matcher.FileResult
	compileErr error
	report     *commit.Report

	width  int
	height int

	base    lipgloss.Style
	found   lipgloss.Style
	repl    lipgloss.Style
	errText lipgloss.Style
	boxOn   lipgloss.Style
	boxOff  lipgloss.Style
}

// 🏭 NewModel builds the model; the engine must already be running.
func NewModel(eng *engine.Engine, keys map[keymap.Chord]keymap.Action, theme config.Theme) Model {
	return Model{
		eng:     eng,
		keys:    keys,
		theme:   theme,
		base:    styleFor(theme.Base),
		found:   styleFor(theme.Find),
		repl:    styleFor(theme.Replace),
		errText: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		boxOn:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("6")).Padding(0, 1),
		boxOff:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		width:   80,
		height:  24,
	}
}

// Report returns the commit report, nil when the user exited without
// confirming.
func (m Model) Report() *commit.Report {
	return m.report
}

func (m Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

// waitForUpdate blocks on the engine's update stream.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.eng.Updates()
		if !ok {
			return doneMsg{}
		}
		return updateMsg(u)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if a, ok := m.action(msg); ok {
			m.eng.Apply(a)
		}
		return m, nil

	case updateMsg:
		u := engine.Update(msg)
		if u.Generation != m.snap.Generation {
			m.results = nil
		}
		m.snap = u.Input
		m.compileErr = u.CompileErr
		if u.File != nil {
			m.results = append(m.results, *u.File)
		}
		if u.Report != nil {
			m.report = u.Report
		}
		return m, m.waitForUpdate()

	case doneMsg:
		return m, tea.Quit
	}
	return m, nil
}

// action translates a key event into an engine Action: bound chords first,
// then plain runes fall back to insertion.
func (m Model) action(msg tea.KeyMsg) (engine.Action, bool) {
	if chord, ok := chordFor(msg); ok {
		if a, bound := m.keys[chord]; bound {
			return engine.Action{Kind: a}, true
		}
	}
	if msg.Type == tea.KeyRunes && !msg.Alt && len(msg.Runes) == 1 {
		return engine.Insert(msg.Runes[0]), true
	}
	if msg.Type == tea.KeySpace {
		return engine.Insert(' '), true
	}
	return engine.Action{}, false
}

// chordNames maps bubbletea key names onto the chord grammar.
var chordNames = map[string]string{
	"esc":       "esc",
	"enter":     "enter",
	"tab":       "tab",
	"shift+tab": "backtab",
	"backspace": "backspace",
	"delete":    "delete",
	"insert":    "insert",
	"up":        "up",
	"down":      "down",
	"left":      "left",
	"right":     "right",
	"home":      "home",
	"end":       "end",
	"pgup":      "pageup",
	"pgdown":    "pagedown",
}

// chordFor converts a key event to a [c-][a-]<name> chord.
func chordFor(msg tea.KeyMsg) (keymap.Chord, bool) {
	var c keymap.Chord
	name := msg.String()

	for {
		switch {
		case strings.HasPrefix(name, "ctrl+"):
			c.Ctrl = true
			name = strings.TrimPrefix(name, "ctrl+")
		case strings.HasPrefix(name, "alt+"):
			c.Alt = true
			name = strings.TrimPrefix(name, "alt+")
		default:
			if mapped, ok := chordNames[name]; ok {
				name = mapped
			}
			c.Name = name
			_, err := keymap.ParseChord(c.String())
			return c, err == nil
		}
	}
}

// styleFor converts a theme style to lipgloss.
func styleFor(s config.Style) lipgloss.Style {
	st := lipgloss.NewStyle()
	if color, ok := colorFor(s.Fg); ok {
		st = st.Foreground(color)
	}
	if color, ok := colorFor(s.Bg); ok {
		st = st.Background(color)
	}
	return st.Bold(s.Bold).Strikethrough(s.CrossedOut)
}

// ansiNames are the base terminal palette.
var ansiNames = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

func colorFor(name string) (lipgloss.Color, bool) {
	if name == "" {
		return "", false
	}
	if code, ok := ansiNames[strings.ToLower(name)]; ok {
		return lipgloss.Color(code), true
	}
	return lipgloss.Color(name), true
}

func (m Model) View() string {
	var b strings.Builder

	findBox, replaceBox := m.boxOff, m.boxOff
	if m.snap.Focus == engine.FieldFind {
		findBox = m.boxOn
	} else {
		replaceBox = m.boxOn
	}

	caseFlag := ""
	if m.snap.IgnoreCase {
		caseFlag = " [i]"
	}

	inputs := lipgloss.JoinHorizontal(lipgloss.Center,
		findBox.Render("Search: "+withCursor(m.snap.Find, m.snap.FindCursor, m.snap.Focus == engine.FieldFind)),
		" ⇥ ",
		replaceBox.Render("Replace: "+withCursor(m.snap.Replace, m.snap.ReplaceCursor, m.snap.Focus == engine.FieldReplace)),
		caseFlag,
	)
	b.WriteString(inputs)
	b.WriteString("\n")

	if m.compileErr != nil {
		b.WriteString(m.errText.Render(m.compileErr.Error()))
		b.WriteString("\n")
	}

	rows := 0
	maxRows := m.height - 5
	for _, res := range m.results {
		for _, match := range res.Matches {
			if rows >= maxRows {
				b.WriteString(m.base.Render("…"))
				return b.String()
			}
			b.WriteString(m.renderMatch(res.Path, match))
			b.WriteString("\n")
			rows++
		}
	}
	return b.String()
}

// renderMatch draws one preview line: the matched text struck through, the
// replacement beside it.
func (m Model) renderMatch(path string, match matcher.Match) string {
	return fmt.Sprintf("%s %s%s",
		m.base.Render(path+":"),
		m.found.Render(oneLine(string(match.Caps.Whole))),
		m.repl.Render(oneLine(string(match.Replacement))),
	)
}

// withCursor marks the cursor position in a focused input line.
func withCursor(s string, pos int, focused bool) string {
	if !focused {
		return s
	}
	r := []rune(s)
	if pos >= len(r) {
		return s + "▏"
	}
	return string(r[:pos]) + "▏" + string(r[pos:])
}

// oneLine flattens a span for single-row display.
func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", "⏎")
}

// 🏃 Run drives the program until exit or commit and returns the commit
// report, if any.
func Run(ctx context.Context, eng *engine.Engine, keys map[keymap.Chord]keymap.Action, theme config.Theme) (*commit.Report, error) {
	p := tea.NewProgram(NewModel(eng, keys, theme), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, errors.Errorf("running terminal UI: %w", err)
	}
	model, ok := final.(Model)
	if !ok {
		return nil, errors.New("unexpected final model")
	}
	return model.Report(), nil
}
