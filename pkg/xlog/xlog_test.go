package xlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{in: "error", want: zerolog.ErrorLevel},
		{in: "warn", want: zerolog.WarnLevel},
		{in: "info", want: zerolog.InfoLevel},
		{in: "debug", want: zerolog.DebugLevel},
		{in: "trace", want: zerolog.TraceLevel},
		{in: "DEBUG", want: zerolog.DebugLevel},
		{in: " info ", want: zerolog.InfoLevel},
		{in: "", want: zerolog.Disabled},
		{in: "verbose", want: zerolog.Disabled},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")
	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/cache", "lasr", "log.txt"), path)
}

func TestSetupWritesLogFile(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)
	t.Setenv(EnvVar, "info")

	logger, closer, err := Setup()
	require.NoError(t, err)
	logger.Info().Msg("hello")
	require.NoError(t, closer())

	data, err := os.ReadFile(filepath.Join(cache, "lasr", "log.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestSetupDisabled(t *testing.T) {
	t.Setenv(EnvVar, "")
	logger, closer, err := Setup()
	require.NoError(t, err)
	require.NoError(t, closer())
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}
