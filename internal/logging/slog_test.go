package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=dbg", "a=1",
		"level=INFO", "msg=inf", "b=2",
		"level=WARN", "msg=wrn", "c=3",
		"level=ERROR", "msg=err", "d=4",
	} {
		require.Contains(t, out, want)
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("entity_type", "food").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	require.Contains(t, out, "entity_type=food")
	require.Contains(t, out, "k=v")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSON_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, "warn")

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.True(t, strings.Contains(out, `"msg":"shown"`), out)
}

func TestLogReporter(t *testing.T) {
	log, buf := newTestLogger(t)
	r := NewLogReporter(log)

	r.CaptureException(context.Background(), nil)
	require.Empty(t, buf.String())

	r.CaptureException(context.Background(), errors.New("remote timeout"), "entity_id", "tmp_1")
	out := buf.String()
	require.Contains(t, out, "level=ERROR")
	require.Contains(t, out, `error="remote timeout"`)
	require.Contains(t, out, "entity_id=tmp_1")
	require.Contains(t, out, "component=reporter")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.CaptureException(context.Background(), errors.New("a"))
	r.CaptureException(context.Background(), errors.New("b"))

	got := r.Errors()
	require.Len(t, got, 2)
	require.EqualError(t, got[1], "b")
}
