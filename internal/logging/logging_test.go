package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONIncludesFieldsAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	l.With(String("component", "converter")).Info(ctx, "converted",
		String("from", "LLA"), Float("lat", 0.5), Err(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]any{
		"msg":        "converted",
		"component":  "converter",
		"from":       "LLA",
		"lat":        0.5,
		"error":      "boom",
		"request_id": "req-1",
	} {
		if rec[key] != want {
			t.Fatalf("%s = %v, want %v", key, rec[key], want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf})
	l.Info(context.Background(), "hidden")
	l.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "")
	cfg := ConfigFromEnv(Config{Level: "info", Format: "json"})
	if cfg.Level != "debug" || cfg.Format != "json" {
		t.Fatalf("ConfigFromEnv = %+v", cfg)
	}
}

func TestRecorderSharesEntriesAcrossWith(t *testing.T) {
	rec := NewRecorder()
	child := rec.With(String("site", "alpha"))
	child.Warn(context.Background(), "origin missing", Int("attempt", 2))
	rec.Debug(context.Background(), "plain")

	entries := rec.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Fields["site"] != "alpha" || entries[0].Fields["attempt"] != 2 {
		t.Fatalf("child entry fields = %+v", entries[0].Fields)
	}
	if _, ok := entries[1].Fields["site"]; ok {
		t.Fatalf("parent entry inherited child fields")
	}
}

func TestRequestIDHelpers(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	if id == "" || RequestIDFromContext(ctx) != id {
		t.Fatalf("EnsureRequestID did not store id")
	}
	ctx2, id2 := EnsureRequestID(ctx)
	if id2 != id || ctx2 != ctx {
		t.Fatalf("EnsureRequestID replaced existing id")
	}
	if FromContext(ctx, nil) == nil {
		t.Fatalf("FromContext returned nil")
	}
	rec := NewRecorder()
	if FromContext(ContextWithLogger(ctx, rec), nil) != Logger(rec) {
		t.Fatalf("FromContext did not return stored logger")
	}
}
