package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"log/slog"
)

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatKV,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "rid-123")
	ctx = WithMessageMeta(ctx, 42, "user-7", 9)

	log := slog.New(handler).With("component", "engine")
	LogEvent(ctx, log, slog.LevelInfo, "dispatch.done",
		slog.String("status", "ok"),
		slog.String("outcome", "handled"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	if len(tokens) < 6 {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	expected := []string{"ts=", "level=INFO", "component=engine", "event=dispatch.done", "status=ok", "rid=rid-123"}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	if !strings.Contains(line, "platform_id=user-7") {
		t.Fatalf("expected platform_id from context in %q", line)
	}
}

func TestStructuredHandlerJSONFields(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	log := slog.New(handler).With("component", "engine.session")
	LogEvent(Background(), log, slog.LevelWarn, "session.save",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &fields); err != nil {
		t.Fatalf("invalid json line: %v (%s)", err, buf.String())
	}
	if fields["level"] != "WARN" {
		t.Fatalf("level = %v, want WARN", fields["level"])
	}
	if fields["component"] != "engine.session" {
		t.Fatalf("component = %v", fields["component"])
	}
	if fields["event"] != "session.save" {
		t.Fatalf("event = %v", fields["event"])
	}
	if fields["err"] != "boom" {
		t.Fatalf("err = %v", fields["err"])
	}
}

func TestDurationKeyNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"duration", "duration_ms"},
		{"startup_duration", "startup_duration_ms"},
		{"elapsed", "elapsed_ms"},
		{"duration_ms", "duration_ms"},
	}
	for _, tc := range tests {
		if got := durationKey(tc.in); got != tc.want {
			t.Fatalf("durationKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	allowed := 0
	for i := 0; i < 9; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3", allowed)
	}

	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}
}
