package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeString(l *lineInput, s string, pairs bool) {
	for _, r := range s {
		l.insert(r, pairs)
	}
}

func TestLineInputInsert(t *testing.T) {
	var l lineInput
	typeString(&l, "abc", false)
	assert.Equal(t, "abc", l.String())
	assert.Equal(t, 3, l.Cursor())
}

func TestLineInputDeleteCharBackward(t *testing.T) {
	var l lineInput
	typeString(&l, "abc", false)

	require.True(t, l.deleteCharBackward(false))
	assert.Equal(t, "ab", l.String())
	require.True(t, l.deleteCharBackward(false))
	require.True(t, l.deleteCharBackward(false))
	assert.Equal(t, "", l.String())
	assert.Equal(t, 0, l.Cursor())

	// At the start there is nothing to delete.
	assert.False(t, l.deleteCharBackward(false))
}

func TestLineInputDeleteWord(t *testing.T) {
	var l lineInput
	typeString(&l, "abc def ghi", false)

	require.True(t, l.deleteWord())
	assert.Equal(t, "abc def ", l.String())
	assert.Equal(t, 8, l.Cursor())

	require.True(t, l.deleteWord())
	assert.Equal(t, "abc ", l.String())
	assert.Equal(t, 4, l.Cursor())

	typeString(&l, "    ", false)
	require.True(t, l.deleteWord())
	assert.Equal(t, "", l.String())
	assert.Equal(t, 0, l.Cursor())

	assert.False(t, l.deleteWord())
}

func TestLineInputDeleteWordMidLine(t *testing.T) {
	var l lineInput
	typeString(&l, "abc def ghi", false)
	for i := 0; i < 4; i++ {
		l.cursorLeft()
	}
	typeString(&l, "bar", false)
	assert.Equal(t, "abc defbar ghi", l.String())
	assert.Equal(t, 10, l.Cursor())

	require.True(t, l.deleteWord())
	assert.Equal(t, "abc  ghi", l.String())
	assert.Equal(t, 4, l.Cursor())

	require.True(t, l.deleteWord())
	assert.Equal(t, " ghi", l.String())
	assert.Equal(t, 0, l.Cursor())
}

func TestLineInputCursorMovement(t *testing.T) {
	var l lineInput
	typeString(&l, "abc", false)

	l.cursorLeft()
	assert.Equal(t, 2, l.Cursor())
	l.cursorHome()
	assert.Equal(t, 0, l.Cursor())
	l.cursorLeft()
	assert.Equal(t, 0, l.Cursor())
	l.cursorRight()
	assert.Equal(t, 1, l.Cursor())
	l.cursorEnd()
	assert.Equal(t, 3, l.Cursor())
	l.cursorRight()
	assert.Equal(t, 3, l.Cursor())
}

func TestLineInputDeleteChar(t *testing.T) {
	var l lineInput
	typeString(&l, "hello", false)
	for i := 0; i < 3; i++ {
		l.cursorLeft()
	}

	require.True(t, l.deleteChar())
	assert.Equal(t, "helo", l.String())
	assert.Equal(t, 2, l.Cursor())

	l.cursorEnd()
	assert.False(t, l.deleteChar())
}

func TestLineInputDeleteToEndOfLine(t *testing.T) {
	var l lineInput
	typeString(&l, "hello world", false)
	for i := 0; i < 6; i++ {
		l.cursorLeft()
	}

	require.True(t, l.deleteToEndOfLine())
	assert.Equal(t, "hello", l.String())
	assert.False(t, l.deleteToEndOfLine())
}

func TestLineInputDeleteLine(t *testing.T) {
	var l lineInput
	typeString(&l, "hello world", false)
	l.cursorHome()

	require.True(t, l.deleteLine())
	assert.Equal(t, "", l.String())
	assert.Equal(t, 0, l.Cursor())
	assert.False(t, l.deleteLine())
}

func TestLineInputUnicode(t *testing.T) {
	var l lineInput
	typeString(&l, "héllo", false)
	assert.Equal(t, 5, l.Cursor())

	require.True(t, l.deleteCharBackward(false))
	require.True(t, l.deleteCharBackward(false))
	require.True(t, l.deleteCharBackward(false))
	assert.Equal(t, "hé", l.String())

	require.True(t, l.deleteCharBackward(false))
	assert.Equal(t, "h", l.String())
}

func TestAutoPairInsert(t *testing.T) {
	var l lineInput
	l.insert('(', true)
	assert.Equal(t, "()", l.String())
	assert.Equal(t, 1, l.Cursor())

	// Typing the closer consumes the auto-inserted one.
	l.insert(')', true)
	assert.Equal(t, "()", l.String())
	assert.Equal(t, 2, l.Cursor())

	// A further closer is a plain insert.
	l.insert(')', true)
	assert.Equal(t, "())", l.String())
}

func TestAutoPairSymmetry(t *testing.T) {
	// Inserting an opener then backspacing restores the original exactly.
	var l lineInput
	typeString(&l, "ab", true)

	l.insert('(', true)
	assert.Equal(t, "ab()", l.String())
	require.True(t, l.deleteCharBackward(true))
	assert.Equal(t, "ab", l.String())
	assert.Equal(t, 2, l.Cursor())
}

func TestAutoPairNested(t *testing.T) {
	var l lineInput
	l.insert('(', true)
	l.insert('[', true)
	assert.Equal(t, "([])", l.String())
	assert.Equal(t, 2, l.Cursor())

	l.insert(']', true)
	assert.Equal(t, "([])", l.String())
	assert.Equal(t, 3, l.Cursor())
	l.insert(')', true)
	assert.Equal(t, "([])", l.String())
	assert.Equal(t, 4, l.Cursor())
}

func TestAutoPairWithTextBetween(t *testing.T) {
	var l lineInput
	l.insert('(', true)
	typeString(&l, "xy", true)
	assert.Equal(t, "(xy)", l.String())

	l.insert(')', true)
	assert.Equal(t, "(xy)", l.String())
	assert.Equal(t, 4, l.Cursor())
}

func TestAutoPairDisabled(t *testing.T) {
	var l lineInput
	l.insert('(', false)
	assert.Equal(t, "(", l.String())
}

func TestAutoPairBackspaceWithContentKeepsCloser(t *testing.T) {
	// Once content separates opener and closer, backspace is ordinary.
	var l lineInput
	l.insert('(', true)
	l.insert('x', true)
	assert.Equal(t, "(x)", l.String())

	require.True(t, l.deleteCharBackward(true))
	assert.Equal(t, "()", l.String())
	require.True(t, l.deleteCharBackward(true))
	assert.Equal(t, "", l.String())
}
