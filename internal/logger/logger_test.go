package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitAndLogging(t *testing.T) {
	Init("debug", "json")

	if !L.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug level to be enabled")
	}
	Info("test info message", "key", "value")
}

func TestNewWritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, "info", "json")
	l.Debug("hidden")
	l.Info("saved", "bot_id", "mar2")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["msg"] != "saved" || rec["bot_id"] != "mar2" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestInitWithFile(t *testing.T) {
	prev := L
	t.Cleanup(func() {
		L = prev
		slog.SetDefault(prev)
	})

	path := filepath.Join(t.TempDir(), "panel.log")
	closer := InitWithFile("info", "text", FileOptions{Path: path, MaxSizeMB: 1, MaxBackups: 1})
	Info("to file", "n", 1)
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Fatalf("log file missing message: %q", data)
	}
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	custom := New(&buf, "info", "text").With("request_id", "12345")

	ctx := WithContext(context.Background(), custom)
	if FromContext(ctx) != custom {
		t.Fatal("expected the stored logger back")
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("fallback logger should not be nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%s) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
