package logger

import (
	"path/filepath"
	"testing"
)

func TestNew_ValidConfigs(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
		output string
	}{
		{"json stdout", "info", "json", "stdout"},
		{"text stderr", "debug", "text", "stderr"},
		{"mixed case", "WARN", "JSON", "stdout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(Config{Level: tt.level, Format: tt.format, Output: tt.output})
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			if log == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "verbose", Format: "json", Output: "stdout"})
	if err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	_, err := New(Config{Level: "info", Format: "xml", Output: "stdout"})
	if err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	log, err := New(Config{Level: "info", Format: "text", Output: path})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	log.Info("hello", Field{Key: "k", Value: "v"})
}

func TestWith(t *testing.T) {
	log, err := New(Config{Level: "info", Format: "text", Output: "stdout"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	child := log.With(Field{Key: "component", Value: "test"})
	if child == nil {
		t.Fatal("With() returned nil")
	}
	if child == log {
		t.Error("With() should return a new logger")
	}
}
