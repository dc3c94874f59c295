// Package mode turns the requested comparison flags into one explicit Mode
// value that the corpus walker and comparator share for the whole run.
package mode

import (
	"errors"
	"slices"
	"strings"

	"github.com/ormasoftchile/compdiff/pkg/fixture"
)

// Kind is one comparison dimension. Kinds combine as a bit set.
type Kind uint8

const (
	Syntax Kind = 1 << iota
	Tree
	Semantic
	Execute
)

var kindNames = []struct {
	kind Kind
	name string
}{
	{Syntax, "syntax"},
	{Tree, "tree"},
	{Semantic, "semantic"},
	{Execute, "execute"},
}

func (k Kind) String() string {
	var names []string
	for _, kn := range kindNames {
		if k&kn.kind != 0 {
			names = append(names, kn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

// Pair names an extractor pair family.
type Pair string

const (
	// ExitCodePair compares process exit statuses.
	ExitCodePair Pair = "exit-code"
	// TreePair compares parse-tree / AST dumps.
	TreePair Pair = "tree"
	// ExecutionPair compares the output of running the compiled program.
	ExecutionPair Pair = "execution"
)

// Flags are the comparison switches requested on the command line.
type Flags struct {
	Parse     bool
	Tree      bool
	Semantic  bool
	Execute   bool
	Extension bool
}

// ErrNoMode is returned when no comparison dimension was requested.
var ErrNoMode = errors.New("no comparison mode selected: use one or more of -p, -t, -s, -x")

// Mode is the fully resolved comparison configuration for a run.
type Mode struct {
	Kinds Kind
	// Extension switches to the self-describing corpus: expected values
	// come from fixture headers instead of a live reference run.
	Extension bool
	// Args are passed to both compilers ahead of the fixture path.
	Args []string
	// Categories are the folder names whose fixtures are compared.
	Categories []fixture.Category
	// Pairs run in order for every fixture.
	Pairs []Pair
	// CollapseWhitespace removes all whitespace before comparing.
	CollapseWhitespace bool
	// Tags label the run in reports.
	Tags []string
}

// Configure builds the Mode for f. Parse and semantic add their error
// categories; execute resets the categories to valid; tree always restricts
// categories to valid and forces whitespace collapsing, whatever else is set.
func Configure(f Flags) (Mode, error) {
	var m Mode
	if f.Extension {
		m.Extension = true
		m.Tags = append(m.Tags, "Extension")
	}

	cats := map[fixture.Category]bool{fixture.Valid: true}
	var exitCodes bool

	if f.Parse {
		m.Kinds |= Syntax
		m.Args = append(m.Args, "-p")
		m.Tags = append(m.Tags, "Syntactic")
		cats[fixture.SyntaxErr] = true
		exitCodes = true
	}
	if f.Tree {
		m.Kinds |= Tree
		m.Args = append(m.Args, "-t")
		m.Tags = append(m.Tags, "Tree")
	}
	if f.Semantic {
		m.Kinds |= Semantic
		m.Args = append(m.Args, "-s")
		m.Tags = append(m.Tags, "Semantic")
		cats[fixture.SemanticErr] = true
		cats[fixture.SyntaxErr] = true
		exitCodes = true
	}
	if f.Execute {
		m.Kinds |= Execute
		m.Args = append(m.Args, "-x")
		m.Tags = append(m.Tags, "Valid")
		cats = map[fixture.Category]bool{fixture.Valid: true}
		exitCodes = true
	}
	if m.Kinds == 0 {
		return Mode{}, ErrNoMode
	}

	if f.Tree {
		cats = map[fixture.Category]bool{fixture.Valid: true}
		m.CollapseWhitespace = true
		m.Pairs = append(m.Pairs, TreePair)
	}
	if f.Execute {
		m.Pairs = append(m.Pairs, ExecutionPair)
	}
	if exitCodes {
		m.Pairs = append(m.Pairs, ExitCodePair)
	}

	for _, c := range fixture.Categories {
		if cats[c] {
			m.Categories = append(m.Categories, c)
		}
	}
	return m, nil
}

// Has reports whether k is part of the mode.
func (m Mode) Has(k Kind) bool {
	return m.Kinds&k != 0
}

// Includes reports whether fixtures of category c are compared.
func (m Mode) Includes(c fixture.Category) bool {
	return slices.Contains(m.Categories, c)
}

// IncludesFolder reports whether a folder name is one of the mode's categories.
func (m Mode) IncludesFolder(name string) bool {
	return m.Includes(fixture.Category(name))
}

// Label joins the tags for reporting, e.g. "Extension, Syntactic".
func (m Mode) Label() string {
	if len(m.Tags) == 0 {
		return m.Kinds.String()
	}
	return strings.Join(m.Tags, ", ")
}
