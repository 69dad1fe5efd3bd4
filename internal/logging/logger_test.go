package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{" error ", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("trace")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestLevelString_RoundTrip(t *testing.T) {
	for _, l := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		got, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	assert.Equal(t, "Level(9)", Level(9).String())
}

func TestLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "crossings", LevelInfo)

	l.Info("scan complete", "image", "a.png", "crossings", 3)

	out := buf.String()
	assert.Contains(t, out, "[crossings] ")
	assert.Contains(t, out, "[INFO] scan complete image=a.png crossings=3")
	assert.Contains(t, out, "logger_test.go:")
}

func TestLogger_OddKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "t", LevelDebug)

	l.Warn("odd", "lonely")
	assert.Contains(t, buf.String(), "[WARN] odd lonely=(missing)")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "t", LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	l.Error("shown too")
	assert.Contains(t, buf.String(), "[WARN] shown")
	assert.Contains(t, buf.String(), "[ERROR] shown too")

	assert.False(t, l.Enabled(LevelInfo))
	assert.True(t, l.Enabled(LevelError))
}
