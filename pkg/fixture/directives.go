package fixture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Directive names recognised in a self-describing fixture header.
const (
	DirectiveOutput   = "Output:"
	DirectiveExitCode = "Exit Code:"
)

// Directives holds the expectations embedded in a fixture header.
// A nil field means the directive is absent.
type Directives struct {
	Output   *string
	ExitCode *string
}

// ExpectedOutput returns the declared output, or "" when none is declared.
func (d Directives) ExpectedOutput() string {
	if d.Output == nil {
		return ""
	}
	return *d.Output
}

// ExpectedExitCode returns the declared exit code, falling back to the
// category's code when the header declares none.
func (d Directives) ExpectedExitCode(c Category) string {
	if d.ExitCode != nil {
		return *d.ExitCode
	}
	return strconv.Itoa(c.ExpectedExitCode())
}

// LoadDirectives reads the header of the fixture at path.
func LoadDirectives(path string) (Directives, error) {
	f, err := os.Open(path)
	if err != nil {
		return Directives{}, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return ParseDirectives(f)
}

// ParseDirectives scans the header of a fixture: the leading run of lines
// that are blank or start with '#'. A directive's block is the comment lines
// after it, up to the next directive or the end of the header. Output lines
// are trimmed and concatenated; the exit code is the first line of its block.
func ParseDirectives(r io.Reader) (Directives, error) {
	var (
		d       Directives
		current string
		output  []string
		code    []string
		sawOut  bool
		sawCode bool
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		if !strings.HasPrefix(raw, "#") {
			break // end of header
		}
		line := strings.TrimSpace(raw[1:])

		if isDirective(line) {
			current = line
			switch line {
			case DirectiveOutput:
				sawOut = true
			case DirectiveExitCode:
				sawCode = true
			}
			continue
		}

		switch current {
		case DirectiveOutput:
			output = append(output, line)
		case DirectiveExitCode:
			if line != "" {
				code = append(code, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Directives{}, fmt.Errorf("read fixture header: %w", err)
	}

	if sawOut {
		s := strings.Join(output, "")
		d.Output = &s
	}
	if sawCode && len(code) > 0 {
		s := code[0]
		d.ExitCode = &s
	}
	return d, nil
}

// headerLabels are the comment lines that open a block. Labels other than
// Output and Exit Code only terminate the preceding block.
var headerLabels = map[string]bool{
	DirectiveOutput:   true,
	DirectiveExitCode: true,
	"Exit:":           true,
	"Input:":          true,
	"Program:":        true,
}

func isDirective(line string) bool {
	return headerLabels[line]
}
