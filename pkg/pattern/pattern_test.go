package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStructural(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "plain_word", in: "foo", want: false},
		{name: "regex", in: "foo.*", want: false},
		{name: "anchored_regex", in: "^foo$", want: false},
		{name: "group_regex", in: `(\w+)@(\w+)`, want: false},
		{name: "lowercase_var", in: "$x", want: false},
		{name: "metavariable", in: "let $X =", want: true},
		{name: "multi_metavariable", in: "fn($$$ARGS)", want: true},
		{name: "metavariable_mid_string", in: "f($A, $B)", want: true},
		{name: "dollar_only", in: "$", want: false},
		{name: "empty", in: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStructural(tt.in))
		})
	}
}

func TestCompileTextual(t *testing.T) {
	p, err := Compile("fo+", false)
	require.NoError(t, err)
	assert.Equal(t, Textual, p.Kind())

	_, err = Compile("fo(", false)
	require.Error(t, err)
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.NotEmpty(t, cerr.Detail)
}

func TestCompileStructural(t *testing.T) {
	p, err := Compile("$FN($$$ARGS)", false)
	require.NoError(t, err)
	assert.Equal(t, Structural, p.Kind())
	assert.Equal(t, "$FN($$$ARGS)", p.Raw())
}

func collect(p *Pattern, data []byte) []Occurrence {
	var occs []Occurrence
	pos := 0
	for {
		occ, ok := p.Find(data, pos)
		if !ok {
			return occs
		}
		occs = append(occs, occ)
		pos = Advance(data, occ)
	}
}

func TestFind(t *testing.T) {
	p, err := Compile("foo", false)
	require.NoError(t, err)

	occs := collect(p, []byte("foo bar foo"))
	require.Len(t, occs, 2)
	assert.Equal(t, 0, occs[0].Start)
	assert.Equal(t, 3, occs[0].End)
	assert.Equal(t, 8, occs[1].Start)
	assert.Equal(t, 11, occs[1].End)
}

func TestFindZeroLength(t *testing.T) {
	// a* matches the empty string everywhere in "bb"; the scan must advance
	// one code point per empty match and terminate.
	p, err := Compile("a*", false)
	require.NoError(t, err)

	occs := collect(p, []byte("bb"))
	require.Len(t, occs, 3)
	for i, occ := range occs {
		assert.Equal(t, i, occ.Start)
		assert.Equal(t, i, occ.End)
	}
}

func TestFindZeroLengthUnicode(t *testing.T) {
	p, err := Compile("x*", false)
	require.NoError(t, err)

	// é is two bytes; empty matches land on rune boundaries only.
	occs := collect(p, []byte("é"))
	require.Len(t, occs, 2)
	assert.Equal(t, 0, occs[0].Start)
	assert.Equal(t, 2, occs[1].Start)
}

func TestFindIgnoreCase(t *testing.T) {
	p, err := Compile("Hello", true)
	require.NoError(t, err)

	occs := collect(p, []byte("hello HELLO"))
	require.Len(t, occs, 2)
	assert.Equal(t, []byte("hello"), occs[0].Caps.Whole)
	assert.Equal(t, []byte("HELLO"), occs[1].Caps.Whole)
}

func TestFindCaptures(t *testing.T) {
	p, err := Compile(`(\w+)@(?P<host>\w+)`, false)
	require.NoError(t, err)

	occs := collect(p, []byte("alice@corp"))
	require.Len(t, occs, 1)
	occ := occs[0]
	assert.Equal(t, []byte("alice@corp"), occ.Caps.Whole)
	require.Len(t, occ.Caps.Indexed, 3)
	assert.Equal(t, []byte("alice"), occ.Caps.Indexed[1])
	assert.Equal(t, []byte("corp"), occ.Caps.Indexed[2])
	assert.Equal(t, []byte("corp"), occ.Caps.Named["host"])
}

func TestFindUnmatchedGroup(t *testing.T) {
	p, err := Compile(`a(b)?c`, false)
	require.NoError(t, err)

	occs := collect(p, []byte("ac"))
	require.Len(t, occs, 1)
	assert.Nil(t, occs[0].Caps.Indexed[1])
}
