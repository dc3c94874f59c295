package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SummaryLine is the run log entry for s.
func SummaryLine(s Summary) string {
	return fmt.Sprintf("Passing %d/ %d tests for %s", s.Passed, s.Compared, strings.Join(s.Tags, ", "))
}

// AppendSummary appends the summary line to the run log at path. Entries
// are newline-prefixed so earlier logs stay line-aligned.
func AppendSummary(path string, s Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	if _, err := fmt.Fprintf(f, "\n%s", SummaryLine(s)); err != nil {
		f.Close()
		return fmt.Errorf("write run log: %w", err)
	}
	return f.Close()
}
