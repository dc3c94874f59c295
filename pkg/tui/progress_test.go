package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ormasoftchile/compdiff/pkg/compare"
	"github.com/ormasoftchile/compdiff/pkg/fixture"
)

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	mm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return mm
}

func TestModelCountsOutcomes(t *testing.T) {
	m := NewModel("Syntactic", 3, nil)
	statuses := []string{compare.StatusPassed, compare.StatusFailed, compare.StatusError}
	for i, st := range statuses {
		o := &compare.Outcome{Fixture: fixture.New("tests/00/valid/f.wacc", "00", 0), Status: st}
		m = send(t, m, outcomeMsg{done: i + 1, total: 3, outcome: o})
	}
	if m.passed != 1 || m.failed != 1 || m.errored != 1 {
		t.Errorf("counts = %d/%d/%d", m.passed, m.failed, m.errored)
	}
	if m.Percent() != 1 {
		t.Errorf("percent = %v", m.Percent())
	}
	view := m.View()
	if !strings.Contains(view, "3/3") || !strings.Contains(view, "Syntactic") || !strings.Contains(view, "f.wacc") {
		t.Errorf("view = %q", view)
	}
}

func TestModelQuitCancels(t *testing.T) {
	cancelled := false
	m := NewModel("Tree", 10, func() { cancelled = true })
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !cancelled {
		t.Error("quit did not cancel the run")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if next.(Model).View() != "" {
		t.Error("finished view should be empty")
	}
}

func TestModelEmptyRun(t *testing.T) {
	m := NewModel("Valid", 0, nil)
	if m.Percent() != 1 {
		t.Errorf("percent = %v", m.Percent())
	}
	m = send(t, m, finishedMsg{})
	if !m.finished {
		t.Error("finished message not handled")
	}
}
