package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/anonymize/pkg/anonymize/runner"
)

func testOptions() Options {
	return Options{
		Manifest:  "/in/list.csv",
		Redacted:  "/in/list_anonymized.csv",
		Root:      "/data",
		Filenames: []string{"a.mwf", "b.mwf"},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func TestNewModel(t *testing.T) {
	m := NewModel(testOptions())
	if m.Done() {
		t.Error("new model should not be done")
	}
	if m.Report() != nil {
		t.Error("new model should have no report")
	}
	if !strings.Contains(m.View(), "Processing 0/2") {
		t.Errorf("View() missing progress line:\n%s", m.View())
	}
}

func TestModelOutcomeMessages(t *testing.T) {
	m := NewModel(testOptions())

	m, cmd := update(t, m, OutcomeMsg(runner.Outcome{Filename: "a.mwf", Path: "/data/a.mwf", Status: runner.StatusProcessed}))
	if cmd == nil {
		t.Error("OutcomeMsg should keep listening for events")
	}
	m, _ = update(t, m, OutcomeMsg(runner.Outcome{Filename: "b.mwf", Status: runner.StatusNotFound}))

	view := m.View()
	for _, want := range []string{"found & processed: /data/a.mwf", "not found: b.mwf", "Processing 2/2"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestModelDone(t *testing.T) {
	m := NewModel(testOptions())
	report := &runner.Report{
		Root: "/data",
		Outcomes: []runner.Outcome{
			{Filename: "a.mwf", Path: "/data/a.mwf", Status: runner.StatusProcessed},
			{Filename: "b.mwf", Path: "/data/b.mwf", Status: runner.StatusFailed, Err: errors.New("denied")},
		},
	}

	m, cmd := update(t, m, DoneMsg{Report: report})
	if cmd != nil {
		t.Error("DoneMsg without a pending quit should not return a command")
	}
	if !m.Done() || m.Report() != report {
		t.Fatal("model should hold the report after DoneMsg")
	}
	if !strings.Contains(m.View(), "1 file processed") {
		t.Errorf("View() missing summary:\n%s", m.View())
	}

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q after completion should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q after completion should return tea.Quit")
	}
}

func TestModelQuitWhileRunning(t *testing.T) {
	m := NewModel(testOptions())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd != nil {
		t.Error("ctrl+c during a run should not quit immediately")
	}
	if !strings.Contains(m.View(), "finishing the current batch") {
		t.Errorf("View() should acknowledge the quit request:\n%s", m.View())
	}

	_, cmd = update(t, m, DoneMsg{Report: &runner.Report{}})
	if cmd == nil {
		t.Fatal("a pending quit should exit once the run is done")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit after DoneMsg")
	}
}

func TestModelHeader(t *testing.T) {
	opts := testOptions()
	opts.Redacted = ""
	view := NewModel(opts).View()

	for _, want := range []string{"/in/list.csv", "not written", "/data"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestModelStartRunsBatch(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.mwf"), []byte("waveform"), 0o644); err != nil {
		t.Fatal(err)
	}

	var seen []string
	opts := Options{
		Root:      root,
		Filenames: []string{"a.mwf", "missing.mwf"},
		Runner: runner.Options{
			CopyDir:   filepath.Join(t.TempDir(), "copies"),
			OnOutcome: func(o runner.Outcome) { seen = append(seen, o.Filename) },
		},
	}
	m := NewModel(opts)

	msg := m.start()()
	done, ok := msg.(DoneMsg)
	if !ok {
		t.Fatalf("start() returned %T, want DoneMsg", msg)
	}
	if done.Report.Processed() != 1 || done.Report.NotFound() != 1 {
		t.Errorf("report = %v", done.Report.Lines())
	}
	if len(seen) != 2 {
		t.Errorf("caller OnOutcome saw %v, want both filenames", seen)
	}

	var streamed int
	for range m.events {
		streamed++
	}
	if streamed != 2 {
		t.Errorf("streamed %d outcomes, want 2", streamed)
	}

	if msg := m.listen()(); msg != nil {
		t.Errorf("listen() on a closed channel = %v, want nil", msg)
	}
}
