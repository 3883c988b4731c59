package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/ShayCichocki/agentpatterns/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	l, err := New(config.LogConfig{Level: "debug", Format: "console", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Debug("hello from test")
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message, got %q", data)
	}
	if !strings.Contains(string(data), `"ts"`) {
		t.Errorf("file log should be JSON with ts key, got %q", data)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "verbose"}); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNopAndNilClose(t *testing.T) {
	var l *Logger
	if err := l.Close(); err != nil {
		t.Errorf("nil Close returned %v", err)
	}
	if err := Nop().Close(); err != nil {
		t.Errorf("Nop Close returned %v", err)
	}
	if OrNop(nil) == nil {
		t.Error("OrNop(nil) returned nil")
	}
}
