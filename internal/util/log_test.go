package util

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug": LevelDebug,
		"DEBUG": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
	}

	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}

	if got := ParseLogLevel("unknown"); got != LevelInfo {
		t.Fatalf("ParseLogLevel default = %v, want %v", got, LevelInfo)
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LevelWarn, &buf)

	logger.Debugf("hidden")
	logger.Infof("hidden")
	logger.Warnf("shown warn")
	logger.Errorf("shown error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("filtered message leaked: %q", out)
	}
	if !strings.Contains(out, "WARN  shown warn") || !strings.Contains(out, "ERROR shown error") {
		t.Fatalf("expected warn and error lines, got %q", out)
	}
}

func TestLoggerLineFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LevelDebug, &buf)
	logger.clock = func() time.Time {
		return time.Date(2026, 8, 30, 12, 34, 56, 789000000, time.UTC)
	}

	logger.Infof("window %d focused", 42)
	want := "2026-08-30 12:34:56.789 INFO  window 42 focused\n"
	if got := buf.String(); got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LevelError, &buf)

	logger.Infof("before")
	logger.SetLevel(LevelDebug)
	logger.Infof("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Fatalf("message below level was written: %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Fatalf("message after SetLevel missing: %q", out)
	}
	if logger.Level() != LevelDebug {
		t.Fatalf("Level() = %v, want %v", logger.Level(), LevelDebug)
	}
}
