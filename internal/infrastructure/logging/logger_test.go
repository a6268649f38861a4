package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse JSON output %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		logger := New(config.LoggingConfig{Level: "info", Format: format, Output: "stderr"}, "1.0.0")
		if logger == nil {
			t.Fatalf("New(%s) returned nil", format)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewWithWriter_DefaultFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LoggingConfig{Level: "info", Format: "json"}, "test")

	logger.Info("home aggregated", "rooms", 3)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e["service"] != ServiceName {
		t.Errorf("service = %v, want %q", e["service"], ServiceName)
	}
	if e["version"] != "test" {
		t.Errorf("version = %v, want test", e["version"])
	}
	if e["msg"] != "home aggregated" {
		t.Errorf("msg = %v", e["msg"])
	}
	if e["rooms"] != float64(3) {
		t.Errorf("rooms = %v, want 3", e["rooms"])
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LoggingConfig{Level: "warn", Format: "json"}, "test")

	logger.Info("dropped")
	logger.Warn("kept")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["msg"] != "kept" {
		t.Errorf("entries = %v, want only the warning", entries)
	}
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LoggingConfig{Format: "json"}, "test")

	child := logger.Component("registry")
	if child == logger {
		t.Fatal("expected child logger to be different from parent")
	}
	child.Info("plugin registered")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["component"] != "registry" {
		t.Errorf("entries = %v, want component=registry", entries)
	}
}

func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("expected non-nil default logger")
	}
}
