package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithOptions(&buf, "warn", false)

	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithOptions(&buf, "info", false).With("cleaner")

	l.Info("row %d dropped", 3)

	out := buf.String()
	if !strings.Contains(out, `"component":"cleaner"`) {
		t.Errorf("component field missing: %s", out)
	}
	if !strings.Contains(out, "row 3 dropped") {
		t.Errorf("message missing: %s", out)
	}
}
