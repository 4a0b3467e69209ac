package logging

import (
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf strings.Builder
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Debug("not shown")
	l.Info("not shown")
	l.Warn("shown")
	l.Error("also shown")

	out := buf.String()
	if strings.Contains(out, "not shown") {
		t.Errorf("suppressed levels leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "[ERROR]") {
		t.Errorf("missing enabled levels: %q", out)
	}
}

func TestFieldsAndPrefix(t *testing.T) {
	var buf strings.Builder
	l := New(Config{Level: LevelDebug, Output: &buf, Prefix: "core"})

	l.WithComponent("buffer").WithField("id", 7).Info("edit applied")

	out := buf.String()
	for _, want := range []string{"core:", "component=buffer", "id=7", "edit applied"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestFormatArgs(t *testing.T) {
	var buf strings.Builder
	l := New(Config{Level: LevelDebug, Output: &buf})

	l.Info("inserted %d bytes at %d", 5, 10)
	if !strings.Contains(buf.String(), "inserted 5 bytes at 10") {
		t.Errorf("got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"garbage", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("goes nowhere")
	l.Error("also nowhere")
}
