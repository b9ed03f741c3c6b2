package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	LoggerFromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("expected the context logger to be used but got output %q", buf.String())
	}
}

func TestLoggerFromContextDefault(t *testing.T) {
	if LoggerFromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected the default logger for a bare context")
	}
}

func TestGetLogLevel(t *testing.T) {
	defer func() { Debug = false }()
	Debug = false
	if GetLogLevel() != slog.LevelInfo {
		t.Fatalf("expected info level but got %v", GetLogLevel())
	}
	Debug = true
	if GetLogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level but got %v", GetLogLevel())
	}
}
