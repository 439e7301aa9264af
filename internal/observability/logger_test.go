package observability

import (
	"strings"
	"testing"
)

func TestWriterLoggerRendersFields(t *testing.T) {
	var buf strings.Builder
	logger := NewWriterLogger(&buf)
	logger.Info("rest call", F("endpoint", "depth"), F("status", 200))
	got := buf.String()
	if got != "INFO rest call endpoint=depth status=200\n" {
		t.Fatalf("unexpected line: %q", got)
	}
}

func TestSetLoggerNilRestoresNoop(t *testing.T) {
	var buf strings.Builder
	SetLogger(NewWriterLogger(&buf))
	t.Cleanup(func() { SetLogger(nil) })

	Log().Warn("one")
	SetLogger(nil)
	Log().Warn("two")

	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected a single line, got %q", buf.String())
	}
}
