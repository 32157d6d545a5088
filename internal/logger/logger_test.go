package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetup_FansOutToConsoleAndFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var console, file bytes.Buffer
	log := Setup("info", &console, &file)

	log.Info("Camera: session started", "device", "spool")
	log.Debug("hidden")

	if !strings.Contains(console.String(), "Camera: session started") {
		t.Errorf("expected console output, got %q", console.String())
	}
	if strings.Contains(console.String(), "hidden") {
		t.Error("expected debug record to be filtered at info level")
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(file.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON line in file output: %v\n%s", err, file.String())
	}
	if entry["device"] != "spool" {
		t.Errorf("expected device attr in file output, got %v", entry["device"])
	}
}

func TestSetup_WithoutFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var console bytes.Buffer
	log := Setup("debug", &console, nil)
	log.Debug("Journal: disabled")

	if !strings.Contains(console.String(), "Journal: disabled") {
		t.Errorf("expected debug record on console, got %q", console.String())
	}
}
