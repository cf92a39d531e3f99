package structural

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteMeta(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single", in: "$FN(1)", want: "µFN(1)"},
		{name: "multi", in: "f($$$ARGS)", want: "f(µµµARGS)"},
		{name: "both", in: "$FN($$$ARGS)", want: "µFN(µµµARGS)"},
		{name: "lowercase_untouched", in: "$x + 1", want: "$x + 1"},
		{name: "plain", in: "foo(1)", want: "foo(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteMeta(tt.in))
		})
	}
}

func TestMatchPythonCall(t *testing.T) {
	src := []byte("def thing(x, y):\n    print(x + y)\n\n\nthing(3, 5)\n")

	p := New("$FN($$$ARGS)", false)
	matches, err := p.Match(context.Background(), "example.py", src)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "print", string(matches[0].Bindings["FN"]))
	assert.Equal(t, "x + y", string(matches[0].Bindings["ARGS"]))
	assert.Equal(t, "print(x + y)", string(src[matches[0].Start:matches[0].End]))

	assert.Equal(t, "thing", string(matches[1].Bindings["FN"]))
	assert.Equal(t, "3, 5", string(matches[1].Bindings["ARGS"]))
}

func TestMatchEmptyArgs(t *testing.T) {
	src := []byte("f()\n")

	p := New("$FN($$$ARGS)", false)
	matches, err := p.Match(context.Background(), "example.py", src)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "f", string(matches[0].Bindings["FN"]))
	assert.Empty(t, matches[0].Bindings["ARGS"])
}

func TestMatchGoCall(t *testing.T) {
	src := []byte("package main\n\nfunc main() {\n\tdoWork(a, b)\n}\n")

	// A bare call is not a valid Go compilation unit; compilation falls back
	// to the function-body context.
	p := New("$FN($$$ARGS)", false)
	matches, err := p.Match(context.Background(), "main.go", src)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "doWork", string(matches[0].Bindings["FN"]))
	assert.Equal(t, "a, b", string(matches[0].Bindings["ARGS"]))
}

func TestMatchConcreteIdentifier(t *testing.T) {
	src := []byte("foo(1)\nbar(2)\nfoo(3)\n")

	p := New("foo($X)", false)
	matches, err := p.Match(context.Background(), "example.py", src)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "1", string(matches[0].Bindings["X"]))
	assert.Equal(t, "3", string(matches[1].Bindings["X"]))
}

func TestMatchIgnoreCaseIdentifiers(t *testing.T) {
	src := []byte("Foo(1)\n")

	p := New("foo($X)", true)
	matches, err := p.Match(context.Background(), "example.py", src)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	// Case-sensitivity applies to identifier literals, so the same pattern
	// without ignore_case finds nothing.
	p = New("foo($X)", false)
	matches, err = p.Match(context.Background(), "example.py", src)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatchRepeatedMetavariable(t *testing.T) {
	src := []byte("add(a, a)\nadd(a, b)\n")

	p := New("add($X, $X)", false)
	matches, err := p.Match(context.Background(), "example.py", src)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", string(matches[0].Bindings["X"]))
}

func TestMatchOrderAndNonOverlap(t *testing.T) {
	// g(f(1)) matches at the outer call only; the inner call is inside the
	// matched span and must not be reported separately.
	src := []byte("g(f(1))\nf(2)\n")

	p := New("$FN($$$ARGS)", false)
	matches, err := p.Match(context.Background(), "example.py", src)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Less(t, matches[0].Start, matches[1].Start)
	assert.LessOrEqual(t, matches[0].End, matches[1].Start)
	assert.Equal(t, "g", string(matches[0].Bindings["FN"]))
}

func TestMatchNoLanguage(t *testing.T) {
	p := New("$FN($$$ARGS)", false)
	_, err := p.Match(context.Background(), "notes.txt", []byte("f(1)"))
	require.ErrorIs(t, err, ErrNoLanguage)
}

func TestMatchInvalidUTF8(t *testing.T) {
	p := New("$FN($$$ARGS)", false)
	_, err := p.Match(context.Background(), "bad.py", []byte{0xff, 0xfe, 'f'})
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestMatchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A large file guarantees the matcher crosses a cancellation check.
	var src []byte
	for i := 0; i < 2000; i++ {
		src = append(src, []byte("call(1, 2)\n")...)
	}

	p := New("$FN($$$ARGS)", false)
	_, err := p.Match(ctx, "big.py", src)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLanguageForPath(t *testing.T) {
	_, name, ok := LanguageForPath("pkg/foo/bar.go")
	require.True(t, ok)
	assert.Equal(t, "go", name)

	_, name, ok = LanguageForPath("script.PY")
	require.True(t, ok)
	assert.Equal(t, "python", name)

	_, _, ok = LanguageForPath("README.md")
	assert.False(t, ok)
}
