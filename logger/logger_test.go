package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(WARN, &buf)

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("visible warn")
	l.Error("visible error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("low-level lines leaked: %s", out)
	}
	if !strings.Contains(out, "WARN: visible warn") || !strings.Contains(out, "ERROR: visible error") {
		t.Errorf("output = %s", out)
	}
}

func TestFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := New(INFO, &buf)
	l.Info("processed %d commands for %s", 3, "cts.example.com")

	if !strings.Contains(buf.String(), "INFO: processed 3 commands for cts.example.com") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"error", ERROR},
		{"bogus", INFO},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
