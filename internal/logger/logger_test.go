package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNew_WritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.Info("dropped")
	log.Warn("kept", "digit", 7)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %s", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "kept" {
		t.Errorf("msg = %v, want kept", entry["msg"])
	}
	if entry["digit"] != float64(7) {
		t.Errorf("digit = %v, want 7", entry["digit"])
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", &buf).WithFields("component", "scheduler")

	log.Info("tick")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["component"] != "scheduler" {
		t.Errorf("component = %v, want scheduler", entry["component"])
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	if log == nil || log.Logger == nil {
		t.Fatal("Discard returned nil logger")
	}
	log.Error("nothing to see")
}
