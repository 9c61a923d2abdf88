package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	constants "pimonitor/config"
)

// execute runs the command tree with args and an empty HOME so no operator
// config file leaks in
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	configFile = ""

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// findCmd returns the subcommand at path after flags have been parsed
func findCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	root := NewRootCmd()
	cmd, rest, err := root.Find(args)
	if err != nil {
		t.Fatalf("Find %v: %v", args, err)
	}
	if err := cmd.ParseFlags(rest); err != nil {
		t.Fatalf("ParseFlags %v: %v", rest, err)
	}
	return cmd
}

func TestRoot_HasCommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "snapshot", "proc", "passcode", "status", "config", "service", "version"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("Missing command %q", name)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "v"+constants.APP_VERSION {
		t.Errorf("Unexpected version output %q", out)
	}
}

func TestPasscode(t *testing.T) {
	out, err := execute(t, "passcode")
	if err != nil {
		t.Fatalf("passcode: %v", err)
	}
	code := strings.TrimSpace(out)
	if len(code) != constants.PASSCODE_LENGTH {
		t.Fatalf("Expected %d characters, got %q", constants.PASSCODE_LENGTH, code)
	}
	for _, c := range code {
		if !strings.ContainsRune(constants.PASSCODE_ALPHABET, c) {
			t.Errorf("Unexpected character %q in %q", c, code)
		}
	}
}

func TestPasscode_Save(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configFile = ""

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"passcode", "--save"})
	if err := root.Execute(); err != nil {
		t.Fatalf("passcode --save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, ".pimonitor", "config.yaml"))
	if err != nil {
		t.Fatalf("Config not written: %v", err)
	}
	if !strings.Contains(string(data), strings.TrimSpace(out.String())) {
		t.Errorf("Saved config %q does not hold passcode %q", data, out.String())
	}
}

func TestLoadConfig_Flags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configFile = ""

	tests := []struct {
		name     string
		args     []string
		wantAddr string
		wantCode string
	}{
		{"defaults", []string{"serve"}, ":4040", ""},
		{"port and ipv4", []string{"serve", "-p", "8080", "-4"}, "0.0.0.0:8080", ""},
		{"ipv6", []string{"serve", "-6"}, "[::]:4040", ""},
		{"passcode", []string{"serve", "-c", "CAFEBABE"}, ":4040", "CAFEBABE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(findCmd(t, tt.args...))
			if err != nil {
				t.Fatalf("loadConfig: %v", err)
			}
			if got := cfg.Server.Address(); got != tt.wantAddr {
				t.Errorf("Address = %q, want %q", got, tt.wantAddr)
			}
			if cfg.Server.Passcode != tt.wantCode {
				t.Errorf("Passcode = %q, want %q", cfg.Server.Passcode, tt.wantCode)
			}
		})
	}
}

func TestLoadConfig_EnvBelowFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PIMONITOR_SERVER_PORT", "9090")
	configFile = ""

	cfg, err := loadConfig(findCmd(t, "status"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected env port 9090, got %d", cfg.Server.Port)
	}

	cfg, err = loadConfig(findCmd(t, "status", "-p", "7070"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected flag port 7070, got %d", cfg.Server.Port)
	}
}

func TestServe_RejectsInvalidPort(t *testing.T) {
	if _, err := execute(t, "serve", "-p", "0"); err == nil {
		t.Fatal("Expected error for port 0")
	}
}

func TestServe_IPFlagsExclusive(t *testing.T) {
	if _, err := execute(t, "serve", "-4", "-6"); err == nil {
		t.Fatal("Expected error for -4 with -6")
	}
}

func TestProc_InvalidPID(t *testing.T) {
	for _, arg := range []string{"abc", "12.5"} {
		if _, err := execute(t, "proc", "kill", arg); err == nil {
			t.Errorf("Expected error for pid %q", arg)
		}
	}
}

func TestProc_MissingProcess(t *testing.T) {
	for _, pid := range []string{"999999999", "99999999999"} {
		out, err := execute(t, "proc", "term", pid)
		if err != nil {
			t.Fatalf("Missing process %s should not fail: %v", pid, err)
		}
		if !strings.Contains(out, "No process with pid "+pid) {
			t.Errorf("Unexpected output %q", out)
		}

		if _, err := execute(t, "proc", "info", pid); err == nil {
			t.Errorf("Expected error inspecting missing process %s", pid)
		}
	}
}

func TestProc_InfoSelfJSON(t *testing.T) {
	out, err := execute(t, "proc", "info", "--json", strconv.Itoa(os.Getpid()))
	if err != nil {
		t.Skipf("cannot inspect self here: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if got, _ := body["pid"].(float64); int(got) != os.Getpid() {
		t.Errorf("Expected pid %d, got %v", os.Getpid(), body["pid"])
	}
}

func TestSnapshot_DeadJSON(t *testing.T) {
	out, err := execute(t, "snapshot", "dead")
	if err != nil {
		t.Fatalf("snapshot dead: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	for _, key := range []string{"osnmdata", "cpuquant", "diskpart", "boottime"} {
		if _, ok := body[key]; !ok {
			t.Errorf("Missing key %q", key)
		}
	}
}

func TestConfig_MasksPasscode(t *testing.T) {
	out, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "generated at start") {
		t.Errorf("Expected generated passcode note, got %q", out)
	}
	if got := maskPasscode("0123456789ABCDEF"); got != "01...EF" {
		t.Errorf("maskPasscode = %q", got)
	}
}

func TestStatus_NotRunning(t *testing.T) {
	// port 1 is never held by a test server
	out, err := execute(t, "status", "-p", "1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Not running") {
		t.Errorf("Unexpected output %q", out)
	}
}
