package common

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	require.NotNil(t, l)
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		assert.False(t, l.Enabled(context.Background(), level))
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Info("engine started", "tick_rate", 60)
	assert.Contains(t, buf.String(), "engine started")
	assert.Contains(t, buf.String(), "tick_rate=60")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
