package utils_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/KaramelBytes/dashkit/internal/utils"
)

func TestLoggerDebugGate(t *testing.T) {
	var buf bytes.Buffer
	log := utils.NewLoggerTo(&buf, false)
	log.Debug("hidden %d", 1)
	log.Info("shown %d", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("info line missing: %q", out)
	}

	buf.Reset()
	log.SetDebug(true)
	log.Debug("cache hit %s", "listings")
	if !strings.Contains(buf.String(), "cache hit listings") {
		t.Fatalf("debug line missing: %q", buf.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var log *utils.Logger
	log.Debug("x")
	log.Info("y")
}
