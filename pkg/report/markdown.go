package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders s as a markdown document.
func Markdown(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# compdiff: %s\n\n", s.Label)
	fmt.Fprintf(&b, "%s\n\n", SummaryLine(s))

	b.WriteString("| Chunk | Compared | Passed |\n|---|---|---|\n")
	for _, c := range s.Chunks {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", c.Name, c.Compared, c.Passed)
	}
	fmt.Fprintf(&b, "| **total** | %d | %d |\n", s.Compared, s.Passed)

	if len(s.Failures) == 0 {
		return b.String()
	}
	b.WriteString("\n## Failures\n")
	for _, f := range s.Failures {
		fmt.Fprintf(&b, "\n### `%s`\n\n", f.Fixture)
		fmt.Fprintf(&b, "- class: %s\n- %s\n", f.Class, f.Message)
		if f.Mismatch == nil {
			continue
		}
		fmt.Fprintf(&b, "- policy: %s\n", f.Mismatch.Policy)
		if f.Mismatch.Diff != "" {
			fmt.Fprintf(&b, "\n```diff\n%s\n```\n", strings.TrimRight(f.Mismatch.Diff, "\n"))
		}
	}
	return b.String()
}

// HTML converts a markdown report to an HTML fragment.
func HTML(md string) ([]byte, error) {
	var buf bytes.Buffer
	converter := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := converter.Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTerminal styles a markdown report for the terminal. The raw
// markdown is returned if rendering fails.
func RenderTerminal(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// WriteFiles writes the markdown report to mdPath and, when htmlPath is
// set, its HTML rendering. Empty paths are skipped.
func WriteFiles(s Summary, mdPath, htmlPath string) error {
	md := Markdown(s)
	if mdPath != "" {
		if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if htmlPath != "" {
		html, err := HTML(md)
		if err != nil {
			return err
		}
		if err := os.WriteFile(htmlPath, html, 0644); err != nil {
			return fmt.Errorf("write html report: %w", err)
		}
	}
	return nil
}
