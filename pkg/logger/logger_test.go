package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevelFiltering(t *testing.T) {
	originalLogger := Logger
	t.Cleanup(func() {
		Logger = originalLogger
		SetLogLevel(INFO)
	})

	var buf bytes.Buffer
	Logger = slog.New(slog.NewTextHandler(&buf, nil))

	SetLogLevel(INFO)
	Debug("debug message should be filtered")
	Info("info message should appear")

	output := buf.String()
	if strings.Contains(output, "debug message should be filtered") {
		t.Fatalf("debug message was logged at INFO level:\n%s", output)
	}
	if !strings.Contains(output, "info message should appear") {
		t.Fatalf("info message was not logged:\n%s", output)
	}

	buf.Reset()
	SetLogLevel(ERROR)
	Warn("warn message should be filtered")
	Error("error message should appear")
	output = buf.String()
	if strings.Contains(output, "warn message should be filtered") {
		t.Fatalf("warn message was logged at ERROR level:\n%s", output)
	}
	if !strings.Contains(output, "error message should appear") {
		t.Fatalf("error message was not logged:\n%s", output)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{" INFO ", INFO, false},
		{"warning", WARN, false},
		{"error", ERROR, false},
		{"loud", INFO, true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestConfigureWritesToFile(t *testing.T) {
	originalLogger := Logger
	t.Cleanup(func() {
		Logger = originalLogger
		SetLogLevel(INFO)
	})

	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "lexilogio.log")
	if err := Configure(Options{Level: "debug", File: path, Output: &buf}); err != nil {
		t.Fatalf("Configure returned error: %v", err)
	}

	Debug("saved terms", "count", 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "saved terms") {
		t.Fatalf("expected log file to contain message, got: %s", data)
	}
	if !strings.Contains(buf.String(), "count=3") {
		t.Fatalf("expected primary output to contain attributes, got: %s", buf.String())
	}
}

func TestConfigureInvalidLevelKeepsLogger(t *testing.T) {
	originalLogger := Logger
	t.Cleanup(func() {
		Logger = originalLogger
		SetLogLevel(INFO)
	})

	var buf bytes.Buffer
	if err := Configure(Options{Level: "chatty", Output: &buf}); err == nil {
		t.Fatal("expected an error for an invalid level")
	}
	Info("still logging")
	if !strings.Contains(buf.String(), "still logging") {
		t.Fatalf("expected logger to remain usable, got: %s", buf.String())
	}
}
