package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelError, ParseLevel("err"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(""))
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Output: &buf})

	log.Debug("hidden")
	log.Info("run finished", "passed", 3)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=info")
	assert.Contains(t, buf.String(), "passed=3")
}

func TestNew_Terminal(t *testing.T) {
	var buf bytes.Buffer
	on := true
	log := New(Options{Level: "debug", Output: &buf, Terminal: &on})

	log.Debug("state transition", "to", "pre")

	assert.Contains(t, buf.String(), "state transition")
	assert.NotContains(t, buf.String(), "level=")
}
