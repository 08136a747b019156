package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"yaml", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("LOG_FORMAT", tt.value)
			assert.Equal(t, tt.want, FormatFromEnv())
		})
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"invalid": slog.LevelInfo,
	}
	for value, want := range tests {
		t.Run(value, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", value)
			assert.Equal(t, want, LevelFromEnv())
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, FormatJSON, slog.LevelInfo)

	logger.Info("entries saved", slog.Int("count", 3), slog.String("table", "ofac_sdn"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "entries saved", entry["msg"])
	assert.Equal(t, float64(3), entry["count"])
	assert.Equal(t, "ofac_sdn", entry["table"])
}

func TestNewWithWriter_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, FormatText, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("table", "un_consolidated"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "msg=shown"), "output: %s", out)
	assert.Contains(t, out, "table=un_consolidated")
}

func TestContextLogger(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, FormatText, slog.LevelInfo)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}
