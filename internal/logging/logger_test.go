package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_CreatesLogFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	defer logger.Close()

	logger.Info("engine starting")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "agora.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "engine starting") {
		t.Errorf("log file does not contain message: %s", data)
	}
}

func TestNewLogger_JSONOutput(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("message delivered", "recipient", "agent-2", "priority", "URGENT")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "agora.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if entry["recipient"] != "agent-2" {
		t.Errorf("recipient = %v, want agent-2", entry["recipient"])
	}
	if entry["priority"] != "URGENT" {
		t.Errorf("priority = %v, want URGENT", entry["priority"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelError)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "agora.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	content := string(data)
	if strings.Contains(content, "debug message") || strings.Contains(content, "info message") {
		t.Error("lower-level messages should be filtered at ERROR level")
	}
	if !strings.Contains(content, "error message") {
		t.Error("error message should be logged")
	}
}

func TestLogger_PersistentAttributes(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	child := logger.WithPattern("market_based").WithTask("task-1")
	child.Info("auction opened")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "agora.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if entry["pattern"] != "market_based" {
		t.Errorf("pattern = %v, want market_based", entry["pattern"])
	}
	if entry["task_id"] != "task-1" {
		t.Errorf("task_id = %v, want task-1", entry["task_id"])
	}
}

func TestLogger_WithDoesNotMutateParent(t *testing.T) {
	logger := NopLogger()

	child := logger.With("channel", "direct")
	if len(logger.attrs) != 0 {
		t.Errorf("parent attrs len = %d, want 0", len(logger.attrs))
	}
	if len(child.attrs) != 1 {
		t.Errorf("child attrs len = %d, want 1", len(child.attrs))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNopLogger_DiscardsOutput(t *testing.T) {
	logger := NopLogger()
	// Must not panic or write anywhere.
	logger.Debug("discarded")
	logger.Info("discarded")
	logger.Error("discarded")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
