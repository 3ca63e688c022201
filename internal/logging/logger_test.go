package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLogger_DebugFlagWins(t *testing.T) {
	t.Setenv("PROTECT_LOG_LEVEL", "error")

	log := NewLogger(&config.RuntimeConfig{Debug: true})
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))

	log = NewLogger(&config.RuntimeConfig{})
	assert.False(t, log.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, log.Enabled(context.Background(), slog.LevelError))
}
