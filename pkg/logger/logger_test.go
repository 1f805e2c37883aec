package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestInitAndLevelString(t *testing.T) {
	Init("debug")
	if got := LevelString(); got != "debug" {
		t.Fatalf("LevelString() = %q, want %q", got, "debug")
	}
	Init("WARN")
	if got := LevelString(); got != "warn" {
		t.Fatalf("LevelString() = %q, want %q", got, "warn")
	}
	Init("Error")
	if got := LevelString(); got != "error" {
		t.Fatalf("LevelString() = %q, want %q", got, "error")
	}
	Init("nonsense")
	if got := LevelString(); got != "info" {
		t.Fatalf("LevelString() = %q, want %q for unknown input", got, "info")
	}
}

func TestLevelFiltering(t *testing.T) {
	// capture output by swapping the package writer
	var buf bytes.Buffer
	orig := out
	out = log.New(&buf, "", 0)
	defer func() { out = orig }()

	Init("warn")
	Debugf("export-debug")
	Infof("export-info")
	Warnf("token refresh failed")
	Errorf("drive export failed")

	got := buf.String()
	if strings.Contains(got, "export-debug") || strings.Contains(got, "export-info") {
		t.Fatalf("debug/info should be suppressed at warn level: %q", got)
	}
	if !strings.Contains(got, "token refresh failed") {
		t.Fatalf("warn message missing: %q", got)
	}
	if !strings.Contains(got, "drive export failed") {
		t.Fatalf("error message missing: %q", got)
	}

	// Println maps to info: suppressed at warn, emitted at info
	buf.Reset()
	Println("letter saved")
	if strings.Contains(buf.String(), "letter saved") {
		t.Fatalf("Println should be suppressed at warn level")
	}
	Init("info")
	buf.Reset()
	Println("letter saved")
	if !strings.Contains(buf.String(), "letter saved") {
		t.Fatalf("Println expected at info level, got: %q", buf.String())
	}
}
