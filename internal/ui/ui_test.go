package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	constants "pimonitor/config"
	"pimonitor/internal/process"
)

func TestCreateList_KeepsOrder(t *testing.T) {
	out := CreateList([]KeyValue{{"zeta", "1"}, {"alpha", "2"}})
	if strings.Index(out, "zeta") > strings.Index(out, "alpha") {
		t.Errorf("Expected insertion order, got %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("Expected two lines, got %q", out)
	}
}

func TestPrintStartupBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintStartupBanner(&buf, StartupInfo{
		Passcode:     "0123456789ABCDEF",
		ReferenceURI: "http://localhost:4040",
		StaticDir:    "frontend/dist",
	})

	out := buf.String()
	for _, want := range []string{"0123456789ABCDEF", "http://localhost:4040", constants.APP_VERSION, "any", "gopsutil"} {
		if !strings.Contains(out, want) {
			t.Errorf("Banner missing %q", want)
		}
	}
}

func TestLibraryVersions(t *testing.T) {
	rows := LibraryVersions()
	if len(rows) != len(trackedModules)+1 {
		t.Fatalf("Expected %d rows, got %d", len(trackedModules)+1, len(rows))
	}
	if rows[0].Key != "go" || !strings.HasPrefix(rows[0].Value, "go") {
		t.Errorf("Unexpected runtime row %+v", rows[0])
	}
}

func TestRenderProcessFact(t *testing.T) {
	tty := "pts/0"
	out := RenderProcessFact(&process.Fact{
		PID:        42,
		Name:       "sleep",
		Username:   "pi",
		Status:     process.StatusSleeping,
		Terminal:   &tty,
		MemoryInfo: process.MemoryInfo{RSS: 2048},
	})
	for _, want := range []string{"Process 42", "sleep", "pi", "pts/0", "2.0 KB"} {
		if !strings.Contains(out, want) {
			t.Errorf("Fact sheet missing %q", want)
		}
	}
}

func TestSpinnerModel_Done(t *testing.T) {
	m := NewSpinner("Collecting")
	if !strings.Contains(m.View(), "Collecting") {
		t.Errorf("Expected message in view, got %q", m.View())
	}

	next, cmd := m.Update(spinnerDoneMsg{result: "Collected"})
	if cmd == nil {
		t.Error("Expected quit command after done")
	}
	if !strings.Contains(next.View(), "Collected") {
		t.Errorf("Expected result in view, got %q", next.View())
	}

	next, _ = m.Update(spinnerDoneMsg{err: errors.New("boom")})
	if !strings.Contains(next.View(), "boom") {
		t.Errorf("Expected error in view, got %q", next.View())
	}
}

func TestRenderProgressBar_Clamps(t *testing.T) {
	for _, p := range []float64{-10, 0, 50, 150} {
		if got := RenderProgressBar(p, 10); strings.Count(got, ProgressFull)+strings.Count(got, ProgressEmpty) != 10 {
			t.Errorf("percent %v: bar %q is not 10 cells", p, got)
		}
	}
}
