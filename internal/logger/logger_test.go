package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_WritesFileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pimonitor.log")
	var console bytes.Buffer

	l := New(path)
	l.SetConsole(&console)
	l.Info("listening on port %d", 4040)
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "INFO: listening on port 4040") {
		t.Errorf("Log file missing entry, got: %q", string(data))
	}
	if !strings.Contains(console.String(), "INFO: listening on port 4040") {
		t.Errorf("Console missing entry, got: %q", console.String())
	}
}

func TestLogger_DebugFilteredByLevel(t *testing.T) {
	var console bytes.Buffer
	l := New("")
	l.SetConsole(&console)

	l.Debug("hidden")
	if console.Len() != 0 {
		t.Fatalf("Debug entry should be dropped at default level, got: %q", console.String())
	}

	l.SetLevel("debug")
	l.Debug("shown")
	if !strings.Contains(console.String(), "DEBUG: shown") {
		t.Errorf("Debug entry should be written at debug level, got: %q", console.String())
	}
}

func TestConfigure_ReplacesDefault(t *testing.T) {
	var console bytes.Buffer
	Configure("", "INFO", &console)
	defer Configure("", "INFO", nil)

	Warning("category %s degraded", "sensread")
	if !strings.Contains(console.String(), "WARNING: category sensread degraded") {
		t.Errorf("Default logger not replaced, got: %q", console.String())
	}
}
