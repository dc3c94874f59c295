package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/ormasoftchile/compdiff/pkg/compare"
)

// --- Tea messages ---

// outcomeMsg reports one counted fixture.
type outcomeMsg struct {
	done    int
	total   int
	outcome *compare.Outcome
}

// finishedMsg ends the view once the run is over.
type finishedMsg struct{}

// Model is the progress view.
type Model struct {
	spinner spinner.Model
	bar     progress.Model

	label   string
	total   int
	done    int
	passed  int
	failed  int
	errored int
	current string

	width    int
	finished bool
	// cancel stops the run when the user quits.
	cancel context.CancelFunc
}

// NewModel creates the view for a run labelled label over total fixtures.
func NewModel(label string, total int, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return Model{
		spinner: sp,
		bar:     bar,
		label:   label,
		total:   total,
		width:   80,
		cancel:  cancel,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, min(60, msg.Width-40))

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			if m.cancel != nil {
				m.cancel()
			}
			m.finished = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case outcomeMsg:
		m.done = msg.done
		m.total = msg.total
		m.current = msg.outcome.Fixture.Path
		switch msg.outcome.Status {
		case compare.StatusPassed:
			m.passed++
		case compare.StatusFailed:
			m.failed++
		default:
			m.errored++
		}

	case finishedMsg:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

// Percent is the completed fraction of the run.
func (m Model) Percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

// View renders the view.
func (m Model) View() string {
	if m.finished {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %d/%d  %s\n",
		m.spinner.View(), headerStyle.Render(m.label), m.done, m.total, m.bar.ViewAs(m.Percent()))
	fmt.Fprintf(&b, "  %s %d  %s %d  %s %d\n",
		passedStyle.Render(GlyphPassed), m.passed,
		failedStyle.Render(GlyphFailed), m.failed,
		erroredStyle.Render(GlyphErrored), m.errored)
	if m.current != "" {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(runewidth.Truncate(m.current, max(10, m.width-4), "…")))
	}
	return b.String()
}

// Session runs the view in the background while the comparison proceeds.
type Session struct {
	program *tea.Program
	done    chan error
}

// Start runs the view on out.
func Start(out io.Writer, label string, total int, cancel context.CancelFunc) *Session {
	p := tea.NewProgram(NewModel(label, total, cancel), tea.WithOutput(out))
	s := &Session{program: p, done: make(chan error, 1)}
	go func() {
		_, err := p.Run()
		s.done <- err
	}()
	return s
}

// Observe forwards a counted fixture to the view. Its signature matches
// runner.Options.OnOutcome.
func (s *Session) Observe(done, total int, o *compare.Outcome) {
	s.program.Send(outcomeMsg{done: done, total: total, outcome: o})
}

// Finish closes the view and waits for it to restore the terminal.
func (s *Session) Finish() error {
	s.program.Send(finishedMsg{})
	return <-s.done
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
