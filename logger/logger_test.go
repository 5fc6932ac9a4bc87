package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	require := require.New(t)

	l, err := New("production", "warn", "json")
	require.NoError(err)
	require.False(l.Core().Enabled(zapcore.InfoLevel))
	require.True(l.Core().Enabled(zapcore.WarnLevel))

	l, err = New("development", "debug", "console")
	require.NoError(err)
	require.True(l.Core().Enabled(zapcore.DebugLevel))
}
