package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormatInProduction(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{
		Writer:      &buf,
		Environment: "production",
		Level:       slog.LevelInfo,
	})

	log.Info("hello", "user_id", "u1")

	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"user_id":"u1"`)
}

func TestNew_PrettyFormatInDevelopment(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{
		Writer:      &buf,
		Environment: "development",
		Level:       slog.LevelInfo,
	})

	log.Info("ranked", "server_id", "srv-1")

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "ranked")
	assert.Contains(t, out, "server_id=srv-1")
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{
		Writer: &buf,
		Format: formatPretty,
		Level:  slog.LevelWarn,
	})

	log.Debug("suppressed")
	log.Info("suppressed too")
	log.Warn("visible")

	out := buf.String()
	require.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "visible")
	assert.NotContains(t, out, "suppressed")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "input %q", tt.input)
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{Writer: &buf, Format: formatJSON})
	log.WithError(assert.AnError).Error("update failed")

	assert.Contains(t, buf.String(), assert.AnError.Error())
}
