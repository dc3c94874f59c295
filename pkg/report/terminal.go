package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/compdiff/pkg/compare"
	"github.com/ormasoftchile/compdiff/pkg/failure"
)

// Status glyphs.
const (
	GlyphPassed  = "✓"
	GlyphFailed  = "✗"
	GlyphSkipped = "○"
	GlyphWarning = "⚠"
)

// DefaultWidth bounds diagnostic values printed on one line.
const DefaultWidth = 120

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorDim    = lipgloss.Color("240")

	passedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	failedStyle = lipgloss.NewStyle().Foreground(colorRed)
	errorStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	totalStyle  = lipgloss.NewStyle().Bold(true)
)

// Printer writes human-readable progress to a terminal or log.
type Printer struct {
	w       io.Writer
	verbose bool
	width   int
}

// NewPrinter creates a Printer. Verbose prints every tested invocation.
func NewPrinter(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, verbose: verbose, width: DefaultWidth}
}

// Tested reports the candidate invocation for a fixture in verbose mode.
func (p *Printer) Tested(invocation string) {
	if !p.verbose {
		return
	}
	fmt.Fprintf(p.w, "%s\n", dimStyle.Render("Tested "+invocation))
}

// Outcome prints failures of o; passing fixtures are only listed in
// verbose mode.
func (p *Printer) Outcome(o *compare.Outcome) {
	switch o.Status {
	case compare.StatusPassed:
		if p.verbose {
			fmt.Fprintf(p.w, "  %s %s\n", passedStyle.Render(GlyphPassed), o.Fixture.Path)
		}
		return
	case compare.StatusFailed:
		fmt.Fprintf(p.w, "  %s %s\n", failedStyle.Render(GlyphFailed), o.Fixture.Path)
	default:
		fmt.Fprintf(p.w, "  %s %s\n", errorStyle.Render(GlyphWarning), o.Fixture.Path)
	}
	for _, ferr := range o.Failures {
		p.failure(ferr)
	}
}

func (p *Printer) failure(ferr *failure.Error) {
	m, ok := ferr.Cause.(*compare.Mismatch)
	if !ok {
		fmt.Fprintf(p.w, "      %s %s\n", ferr.Class, p.truncate(causeText(ferr)))
		return
	}
	fmt.Fprintf(p.w, "      %s %s\n", ferr.Class, ferr.Message)
	fmt.Fprintf(p.w, "        reference: %s\n", p.truncate(fmt.Sprintf("%q", m.Reference)))
	fmt.Fprintf(p.w, "        candidate: %s\n", p.truncate(fmt.Sprintf("%q", m.Candidate)))
	if p.verbose && m.Diff != "" {
		for _, line := range strings.Split(strings.TrimRight(m.Diff, "\n"), "\n") {
			fmt.Fprintf(p.w, "        %s\n", dimStyle.Render(line))
		}
	}
}

func causeText(ferr *failure.Error) string {
	if ferr.Cause == nil {
		return ferr.Message
	}
	return ferr.Message + ": " + ferr.Cause.Error()
}

func (p *Printer) truncate(s string) string {
	return runewidth.Truncate(s, p.width, "…")
}

// ChunkPassed prints the completion banner for a chunk.
func (p *Printer) ChunkPassed(name string) {
	banner := fmt.Sprintf("%s PASSED %s %s", strings.Repeat("=", 35), strings.ToUpper(name), strings.Repeat("=", 39))
	fmt.Fprintf(p.w, "%s\n", bannerStyle.Render(banner))
}

// Summary prints the final counts and tags.
func (p *Printer) Summary(s Summary) {
	line := fmt.Sprintf("Passing %d/ %d tests!", s.Passed, s.Compared)
	if s.AllPassed() {
		line = passedStyle.Render(line)
	} else {
		line = failedStyle.Render(line)
	}
	fmt.Fprintf(p.w, "\n%s\n", totalStyle.Render(line))
	if len(s.Tags) > 0 {
		fmt.Fprintf(p.w, "These tests are tagged as %s\n", strings.Join(s.Tags, ", "))
	}
	if s.Failed > 0 || s.Errored > 0 {
		fmt.Fprintf(p.w, "  %d failed, %d errors  %dms\n", s.Failed, s.Errored, s.DurationMs)
	}
}
