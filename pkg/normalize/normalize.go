// Package normalize canonicalizes captured compiler output so that
// formatting noise (indentation, tabs, node indices, heap addresses) does not
// make two equivalent outputs compare unequal.
//
// Every transform is idempotent, and so is every Policy built from them.
package normalize

import (
	"errors"
	"strings"

	"github.com/coregx/coregex"
)

// DefaultSeparator is the banner line both compilers print between their
// preamble and the structural output.
var DefaultSeparator = strings.Repeat("=", 59)

// ErrNoSeparator is returned by AfterSeparator when the separator is absent.
var ErrNoSeparator = errors.New("separator line not found in output")

// addressPattern matches a five-hex-digit heap address.
var addressPattern = mustCompile(`0x[0-9a-fA-F]{5}`)

func mustCompile(pattern string) *coregex.Regexp {
	re, err := coregex.Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Transform is a single canonicalization step.
type Transform func(string) string

// CollapseWhitespace removes every whitespace character.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// MaskAddresses deletes every "0x" followed by five hex digits. Deleting a
// match can splice a new one together, so it repeats until nothing changes.
func MaskAddresses(s string) string {
	for {
		out := addressPattern.ReplaceAllString(s, "")
		if out == s {
			return out
		}
		s = out
	}
}

// RemoveTabs deletes tab characters.
func RemoveTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "")
}

// StripLeadingDigits removes the leading run of decimal digits from every
// line. The reference tree dump prefixes nodes with their indices.
func StripLeadingDigits(s string) string {
	lines := strings.SplitAfter(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, "0123456789")
	}
	return strings.Join(lines, "")
}

// StripLines trims every line and concatenates the results.
func StripLines(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		b.WriteString(strings.TrimSpace(line))
	}
	return strings.TrimSpace(b.String())
}

// TrimSpace is strings.TrimSpace as a Transform.
func TrimSpace(s string) string {
	return strings.TrimSpace(s)
}

// AfterSeparator returns the section following the first occurrence of sep,
// up to the next occurrence if there is one.
func AfterSeparator(s, sep string) (string, error) {
	if sep == "" {
		sep = DefaultSeparator
	}
	i := strings.Index(s, sep)
	if i < 0 {
		return "", ErrNoSeparator
	}
	rest := s[i+len(sep):]
	if j := strings.Index(rest, sep); j >= 0 {
		rest = rest[:j]
	}
	return rest, nil
}
