package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerWithLevel(t *testing.T) {
	logger, err := NewLoggerWithLevel("debug")
	if err != nil {
		t.Fatalf("NewLoggerWithLevel: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level enabled")
	}

	logger, err = NewLoggerWithLevel("nonsense")
	if err != nil {
		t.Fatalf("NewLoggerWithLevel: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected fallback to info level")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info level enabled")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatalf("expected no-op logger")
	}
	l := zap.NewExample()
	ctx := WithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("expected injected logger")
	}
}
