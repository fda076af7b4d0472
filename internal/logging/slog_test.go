package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlog(slog.New(handler))

	logger.Debug("debug message", "key", "v1")
	logger.Info("info message", "key", "v2")
	logger.Warn("warn message", "key", "v3")
	logger.Error("error message", "key", "v4")

	out := buf.String()
	require.Contains(t, out, "level=DEBUG")
	require.Contains(t, out, "debug message")
	require.Contains(t, out, "level=INFO")
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "level=ERROR")
	require.Contains(t, out, "key=v4")
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	logger := NewNop()
	logger.Debug("ignored")
	logger.Info("ignored", "k", 1)
	logger.Warn("ignored")
	logger.Error("ignored")
}
