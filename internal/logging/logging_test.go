package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		l := NewLogger(verbose)
		if l == nil || l.SugaredLogger == nil {
			t.Fatalf("expected logger for verbose=%v", verbose)
		}
		if got := l.Desugar().Core().Enabled(zapcore.DebugLevel); got != verbose {
			t.Errorf("verbose=%v: expected debug enabled %v, got %v", verbose, verbose, got)
		}
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := FromZap(zap.New(core)).With("file", "a.ass")

	l.Infow("Opened document", "events", 3)
	l.Debugw("hidden")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["file"] != "a.ass" {
		t.Errorf("expected file field, got %v", ctx)
	}
	if ctx["events"] != int64(3) {
		t.Errorf("expected events=3, got %v", ctx["events"])
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Infow("dropped")
	if l.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected nop logger to be disabled")
	}
}
