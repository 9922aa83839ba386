package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	var tests = []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn", false)

	l.Info("hidden")
	l.Warn("meter lost", "frames", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "meter lost") || !strings.Contains(out, "frames=3") {
		t.Errorf("unexpected output: %q", out)
	}

	buf.Reset()
	newLogger(&buf, "info", true).Info("started", "session", "abc")
	if !strings.Contains(buf.String(), `"session":"abc"`) {
		t.Errorf("expected JSON output, got: %q", buf.String())
	}
}
