package logger

import (
	"bytes"
	"testing"

	"market-watchlist/src/models"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warn ", LevelWarning},
		{"Warning", LevelWarning},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ParseLevel(tc.in), tc.in)
	}
}

func TestLoggerThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&models.MConfig{LogLevel: "WARNING"}, "Test")
	l.SetOutput(&buf)

	l.Info("hidden %d", 1)
	l.Warning("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[Test] WARNING: shown 2")
}

func TestNamedSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(nil, "Root")
	l.SetOutput(&buf)

	l.Named("Child").Error("boom")

	assert.Contains(t, buf.String(), "[Child] ERROR: boom")
}

func TestCriticalExits(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(nil, "Root")
	l.SetOutput(&buf)
	code := -1
	l.exit = func(c int) { code = c }

	l.Critical("fatal")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "CRITICAL: fatal")
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Info("nothing") })
}
