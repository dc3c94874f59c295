// Package fixture describes corpus source files and the expectations that can
// be derived from them without running the reference compiler.
package fixture

import (
	"path/filepath"
	"strings"
)

// Category is the classification folder a fixture lives in.
type Category string

const (
	Valid       Category = "valid"
	SyntaxErr   Category = "syntaxErr"
	SemanticErr Category = "semanticErr"
)

// Exit codes a conforming compiler returns for each category.
const (
	ExitOK            = 0
	ExitSyntaxError   = 100
	ExitSemanticError = 200
)

// Categories lists every known category.
var Categories = []Category{Valid, SyntaxErr, SemanticErr}

// Fixture is a single source file in the corpus. Fixtures are never modified.
type Fixture struct {
	Path       string   `json:"path"`
	Chunk      string   `json:"chunk"`       // chunk directory name, e.g. "03"
	ChunkIndex int      `json:"chunk_index"` // position in the sorted chunk list
	Category   Category `json:"category"`
}

// New builds a Fixture, inferring its category from the path.
func New(path, chunk string, chunkIndex int) Fixture {
	return Fixture{
		Path:       path,
		Chunk:      chunk,
		ChunkIndex: chunkIndex,
		Category:   CategoryOf(path),
	}
}

// Name returns the file name of the fixture.
func (f Fixture) Name() string {
	return filepath.Base(f.Path)
}

// Dir returns the directory containing the fixture.
func (f Fixture) Dir() string {
	return filepath.Dir(f.Path)
}

// CategoryOf returns the nearest enclosing folder of path that names a
// category. Paths outside any category folder are treated as Valid.
func CategoryOf(path string) Category {
	parts := strings.Split(filepath.ToSlash(filepath.Dir(path)), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		switch Category(parts[i]) {
		case Valid, SyntaxErr, SemanticErr:
			return Category(parts[i])
		}
	}
	return Valid
}

// ExpectedExitCode is the exit code a compiler must return for a fixture of
// category c when nothing more specific is declared.
func (c Category) ExpectedExitCode() int {
	switch c {
	case SyntaxErr:
		return ExitSyntaxError
	case SemanticErr:
		return ExitSemanticError
	default:
		return ExitOK
	}
}
