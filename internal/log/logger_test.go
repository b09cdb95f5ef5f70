package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestVerbosityLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		wantInfo  bool
		wantDebug bool
	}{
		{"quiet", LevelQuiet, false, false},
		{"info", LevelInfo, true, false},
		{"debug", LevelDebug, true, true},
		{"trace", LevelTrace, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Initialize(tt.level, &buf)

			if got := IsInfo(); got != tt.wantInfo {
				t.Errorf("IsInfo() = %v, want %v", got, tt.wantInfo)
			}
			if got := IsDebug(); got != tt.wantDebug {
				t.Errorf("IsDebug() = %v, want %v", got, tt.wantDebug)
			}
			if got := Verbosity(); got != tt.level {
				t.Errorf("Verbosity() = %d, want %d", got, tt.level)
			}
		})
	}
}

func TestInfoSuppressedWhenQuiet(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelQuiet, &buf)

	Info("should not appear")
	if buf.Len() != 0 {
		t.Errorf("expected no output at quiet level, got %q", buf.String())
	}

	Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestProgressLineIsClearedBeforeLogging(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("enriching batch %d/%d", 1, 3)
	Info("cache hit", "count", 2)

	out := buf.String()
	if !strings.Contains(out, "enriching batch 1/3") {
		t.Errorf("expected progress text in output, got %q", out)
	}
	// The log line must start on a fresh line, not overwrite the progress.
	if !strings.Contains(out, "\n") {
		t.Errorf("expected newline separating progress from log, got %q", out)
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("working")
	ProgressDone()
	if !strings.Contains(buf.String(), " done") {
		t.Errorf("expected ' done' suffix, got %q", buf.String())
	}

	// ProgressDone without an in-progress line is a no-op.
	buf.Reset()
	ProgressDone()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
