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

package keymap

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// 🎯 Action is one of the closed set of editor actions a key may trigger.
type Action int

const (
	Noop Action = iota
	Exit
	Confirm
	ToggleSearchReplace
	ToggleIgnoreCase
	CursorLeft
	CursorRight
	CursorHome
	CursorEnd
	DeleteChar
	DeleteCharBackward
	DeleteWord
	DeleteToEndOfLine
	DeleteLine
	InsertChar
)

// 🗺️ actionNames maps actions to their config-file names.
var actionNames = map[Action]string{
	Noop:                "noop",
	Exit:                "exit",
	Confirm:             "confirm",
	ToggleSearchReplace: "toggle_search_replace",
	ToggleIgnoreCase:    "toggle_ignore_case",
	CursorLeft:          "cursor_left",
	CursorRight:         "cursor_right",
	CursorHome:          "cursor_home",
	CursorEnd:           "cursor_end",
	DeleteChar:          "delete_char",
	DeleteCharBackward:  "delete_char_backward",
	DeleteWord:          "delete_word",
	DeleteToEndOfLine:   "delete_to_end_of_line",
	DeleteLine:          "delete_line",
	InsertChar:          "insert_char",
}

var actionsByName = func() map[string]Action {
	m := make(map[string]Action, len(actionNames))
	for a, name := range actionNames {
		m[name] = a
	}
	return m
}()

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// 📝 ParseAction resolves a config-file action name.
func ParseAction(name string) (Action, error) {
	a, ok := actionsByName[name]
	if !ok {
		return Noop, errors.Errorf("unknown action: %q", name)
	}
	return a, nil
}

// 🎹 Chord is a single key with optional control/alt modifiers.
type Chord struct {
	Ctrl bool
	Alt  bool
	Name string // single printable char, digit, f0-f12, or a special key name
}

// 🗝️ specialKeys are the non-character key names the chord grammar accepts.
var specialKeys = map[string]bool{
	"backspace": true,
	"enter":     true,
	"left":      true,
	"right":     true,
	"up":        true,
	"down":      true,
	"home":      true,
	"end":       true,
	"pageup":    true,
	"pagedown":  true,
	"tab":       true,
	"backtab":   true,
	"delete":    true,
	"insert":    true,
	"esc":       true,
}

func validKeyName(name string) bool {
	if specialKeys[name] {
		return true
	}
	if len(name) >= 2 && len(name) <= 3 && name[0] == 'f' {
		n := name[1:]
		switch n {
		case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12":
			return true
		}
		return false
	}
	// A single printable character (which covers digits).
	r, size := utf8.DecodeRuneInString(name)
	return size == len(name) && r != utf8.RuneError && strings.IndexFunc(name, func(r rune) bool { return r < ' ' }) < 0
}

// 📝 ParseChord parses the chord grammar [c-][a-]<name>.
func ParseChord(s string) (Chord, error) {
	var c Chord
	rest := s
	if strings.HasPrefix(rest, "c-") {
		c.Ctrl = true
		rest = rest[2:]
	}
	if strings.HasPrefix(rest, "a-") {
		c.Alt = true
		rest = rest[2:]
	}
	if rest == "" {
		return Chord{}, errors.Errorf("empty key in chord: %q", s)
	}
	if !validKeyName(rest) {
		return Chord{}, errors.Errorf("invalid key name %q in chord %q", rest, s)
	}
	c.Name = rest
	return c, nil
}

func (c Chord) String() string {
	var b strings.Builder
	if c.Ctrl {
		b.WriteString("c-")
	}
	if c.Alt {
		b.WriteString("a-")
	}
	b.WriteString(c.Name)
	return b.String()
}

// 🏭 Default returns the default key bindings.
func Default() map[Chord]Action {
	return map[Chord]Action{
		{Name: "esc"}:              Exit,
		{Ctrl: true, Name: "c"}:    Exit,
		{Name: "enter"}:            Confirm,
		{Name: "tab"}:              ToggleSearchReplace,
		{Ctrl: true, Name: "t"}:    ToggleIgnoreCase,
		{Name: "left"}:             CursorLeft,
		{Ctrl: true, Name: "b"}:    CursorLeft,
		{Name: "right"}:            CursorRight,
		{Ctrl: true, Name: "f"}:    CursorRight,
		{Name: "home"}:             CursorHome,
		{Ctrl: true, Name: "a"}:    CursorHome,
		{Name: "end"}:              CursorEnd,
		{Ctrl: true, Name: "e"}:    CursorEnd,
		{Name: "delete"}:           DeleteChar,
		{Ctrl: true, Name: "d"}:    DeleteChar,
		{Name: "backspace"}:        DeleteCharBackward,
		{Ctrl: true, Name: "h"}:    DeleteCharBackward,
		{Ctrl: true, Name: "w"}:    DeleteWord,
		{Ctrl: true, Name: "k"}:    DeleteToEndOfLine,
		{Ctrl: true, Name: "u"}:    DeleteLine,
	}
}
