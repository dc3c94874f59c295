// Package extract implements the extractor pairs: for every comparison
// dimension, one function that obtains the expected value (from the reference
// compiler or the fixture header) and one that obtains the candidate's value.
//
// Extractors do the side-specific work (cutting the structural section out
// of a dump, stripping node indices from the reference tree). Everything that
// must apply to both sides lives in the pair's normalize.Policy.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ormasoftchile/compdiff/pkg/config"
	"github.com/ormasoftchile/compdiff/pkg/failure"
	"github.com/ormasoftchile/compdiff/pkg/fixture"
	"github.com/ormasoftchile/compdiff/pkg/mode"
	"github.com/ormasoftchile/compdiff/pkg/normalize"
	"github.com/ormasoftchile/compdiff/pkg/providers"
)

// exitCodeMarker precedes the exit status in reference compiler output.
const exitCodeMarker = "The exit code is "

// Request identifies one extraction: a fixture and the mode arguments.
type Request struct {
	Fixture fixture.Fixture
	Args    []string
}

// Func extracts one side's value for a request.
type Func func(ctx context.Context, req Request) (string, error)

// Side is a named extractor function.
type Side struct {
	Name    string
	Extract Func
}

// Pair is a reference/candidate extractor pair compared under Policy.
type Pair struct {
	Kind      mode.Pair
	Reference Side
	Candidate Side
	Policy    normalize.Policy
}

// Extractors builds pairs bound to an executor and a configuration.
type Extractors struct {
	exec  providers.CommandExecutor
	cfg   *config.Config
	masks []normalize.Transform
}

// New creates Extractors. Mask rules from the configuration are compiled
// once here and appended to every pair policy.
func New(exec providers.CommandExecutor, cfg *config.Config) (*Extractors, error) {
	rules := make([]normalize.Rule, 0, len(cfg.Masks))
	for _, m := range cfg.Masks {
		rules = append(rules, normalize.Rule{Pattern: m.Pattern, Replace: m.Replace})
	}
	masks, err := normalize.CompileMasks(rules)
	if err != nil {
		return nil, err
	}
	return &Extractors{exec: exec, cfg: cfg, masks: masks}, nil
}

// Pairs returns the extractor pairs for m, in the order they are checked.
func (x *Extractors) Pairs(m mode.Mode) []Pair {
	pairs := make([]Pair, 0, len(m.Pairs))
	for _, kind := range m.Pairs {
		var p Pair
		switch kind {
		case mode.TreePair:
			p = Pair{
				Reference: Side{"reference-tree", x.ReferenceTree},
				Candidate: Side{"candidate-tree", x.CandidateTree},
				Policy:    normalize.Tree,
			}
		case mode.ExecutionPair:
			ref := Side{"reference-execution", x.ReferenceExecution}
			if m.Extension {
				ref = Side{"declared-output", DeclaredOutput}
			}
			p = Pair{
				Reference: ref,
				Candidate: Side{"candidate-execution", x.CandidateExecution},
				Policy:    normalize.Execution,
			}
		case mode.ExitCodePair:
			ref := Side{"category-exit-code", CategoryExitCode}
			switch {
			case m.Extension:
				ref = Side{"declared-exit-code", DeclaredExitCode}
			case x.cfg.Reference.LiveExitCodes:
				ref = Side{"reference-exit-code", x.ReferenceExitCode}
			}
			p = Pair{
				Reference: ref,
				Candidate: Side{"candidate-exit-code", x.CandidateExitCode},
				Policy:    normalize.Exact,
			}
		default:
			continue
		}
		p.Kind = kind
		if m.CollapseWhitespace {
			p.Policy = p.Policy.WithCollapse()
		}
		p.Policy = p.Policy.WithMasks(x.masks)
		pairs = append(pairs, p)
	}
	return pairs
}

// CandidateInvocation is the candidate command for req.
func (x *Extractors) CandidateInvocation(req Request) providers.Invocation {
	argv := slices.Clone(x.cfg.Candidate.Argv)
	argv = append(argv, req.Args...)
	argv = append(argv, req.Fixture.Path)
	return providers.Invocation{Argv: argv}
}

// referenceInvocation is the reference command for req, fed the stdin script.
func (x *Extractors) referenceInvocation(req Request, stdin string) providers.Invocation {
	argv := slices.Clone(x.cfg.Reference.Argv)
	argv = append(argv, req.Args...)
	argv = append(argv, req.Fixture.Path)
	return providers.Invocation{Argv: argv, Stdin: stdin}
}

func (x *Extractors) run(ctx context.Context, req Request, what string, inv providers.Invocation) (*providers.CommandResult, error) {
	res, err := x.exec.Execute(ctx, inv)
	if err != nil {
		return nil, failure.Wrap(failure.Process, req.Fixture.Path, "run "+what, err)
	}
	return res, nil
}

// CategoryExitCode infers the reference exit code from the fixture category.
func CategoryExitCode(_ context.Context, req Request) (string, error) {
	return strconv.Itoa(req.Fixture.Category.ExpectedExitCode()), nil
}

// ReferenceExitCode runs the reference compiler and reads the exit status it
// reports in its output.
func (x *Extractors) ReferenceExitCode(ctx context.Context, req Request) (string, error) {
	res, err := x.run(ctx, req, "reference", x.referenceInvocation(req, "\n"))
	if err != nil {
		return "", err
	}
	code, ok := parseExitCode(res.Combined())
	if !ok {
		return "", failure.New(failure.Process, req.Fixture.Path, "reference output does not report an exit code")
	}
	return code, nil
}

// parseExitCode returns the digits following the last exit-code marker.
func parseExitCode(out string) (string, bool) {
	i := strings.LastIndex(out, exitCodeMarker)
	if i < 0 {
		return "", false
	}
	rest := out[i+len(exitCodeMarker):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return "", false
	}
	return rest[:end], true
}

// CandidateExitCode runs the candidate and reports its exit status.
// Output is discarded.
func (x *Extractors) CandidateExitCode(ctx context.Context, req Request) (string, error) {
	res, err := x.run(ctx, req, "candidate", x.CandidateInvocation(req))
	if err != nil {
		return "", err
	}
	return strconv.Itoa(res.ExitCode), nil
}

// ReferenceTree returns the reference tree dump with node indices and tabs
// removed. stderr is discarded.
func (x *Extractors) ReferenceTree(ctx context.Context, req Request) (string, error) {
	res, err := x.run(ctx, req, "reference", x.referenceInvocation(req, x.cfg.Stdin))
	if err != nil {
		return "", err
	}
	section, err := x.section(req, "reference", string(res.Stdout))
	if err != nil {
		return "", err
	}
	tree := normalize.StripLeadingDigits(section)
	return normalize.RemoveTabs(strings.TrimSpace(tree)), nil
}

// CandidateTree returns the candidate's tree dump.
func (x *Extractors) CandidateTree(ctx context.Context, req Request) (string, error) {
	res, err := x.run(ctx, req, "candidate", x.CandidateInvocation(req))
	if err != nil {
		return "", err
	}
	section, err := x.section(req, "candidate", string(res.Stdout))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(section), nil
}

// ReferenceExecution returns what the reference reports the program printed.
func (x *Extractors) ReferenceExecution(ctx context.Context, req Request) (string, error) {
	res, err := x.run(ctx, req, "reference", x.referenceInvocation(req, x.cfg.Stdin))
	if err != nil {
		return "", err
	}
	return x.section(req, "reference", string(res.Stdout))
}

func (x *Extractors) section(req Request, side, out string) (string, error) {
	section, err := normalize.AfterSeparator(strings.TrimSpace(out), x.cfg.Separator)
	if err != nil {
		return "", failure.Wrap(failure.Process, req.Fixture.Path, side+" output", err)
	}
	return section, nil
}

// CandidateExecution compiles the fixture with the candidate, builds the
// companion assembly file into a native binary in a scratch directory and
// runs it under the emulator. Like a shell && chain, a failing step ends the
// run and the output collected so far is returned.
func (x *Extractors) CandidateExecution(ctx context.Context, req Request) (string, error) {
	var out strings.Builder

	compile := x.CandidateInvocation(Request{Fixture: req.Fixture})
	res, err := x.run(ctx, req, "candidate", compile)
	if err != nil {
		return "", err
	}
	out.Write(res.Stdout)
	if res.ExitCode != 0 {
		return out.String(), nil
	}

	companion, err := filepath.Abs(filepath.Join(req.Fixture.Dir(), x.cfg.Toolchain.Companion))
	if err != nil {
		return "", failure.Wrap(failure.Process, req.Fixture.Path, "resolve companion", err)
	}
	scratch, err := os.MkdirTemp("", "compdiff-*")
	if err != nil {
		return "", failure.Wrap(failure.Internal, req.Fixture.Path, "create scratch dir", err)
	}
	defer os.RemoveAll(scratch)

	const binary = "input"
	build := providers.Invocation{
		Argv: expand(x.cfg.Toolchain.Argv, binary, companion, req.Fixture.Path),
		Dir:  scratch,
	}
	res, err = x.run(ctx, req, "toolchain", build)
	if err != nil {
		return "", err
	}
	out.Write(res.Stdout)
	if res.ExitCode != 0 {
		return out.String(), nil
	}

	emulate := providers.Invocation{
		Argv:  expand(x.cfg.Emulator.Argv, "./"+binary, companion, req.Fixture.Path),
		Stdin: x.cfg.Stdin,
		Dir:   scratch,
	}
	res, err = x.run(ctx, req, "emulator", emulate)
	if err != nil {
		return "", err
	}
	out.WriteString(res.Combined())
	return out.String(), nil
}

// expand substitutes argv placeholders.
func expand(argv []string, binary, companion, fixturePath string) []string {
	r := strings.NewReplacer(
		config.PlaceholderBinary, binary,
		config.PlaceholderCompanion, companion,
		config.PlaceholderFixture, fixturePath,
	)
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = r.Replace(a)
	}
	return out
}

// DeclaredOutput returns the output declared in the fixture header, or ""
// when it declares none.
func DeclaredOutput(_ context.Context, req Request) (string, error) {
	d, err := fixture.LoadDirectives(req.Fixture.Path)
	if err != nil {
		return "", failure.Wrap(failure.Directive, req.Fixture.Path, "read header", err)
	}
	return d.ExpectedOutput(), nil
}

// DeclaredExitCode returns the exit code declared in the fixture header,
// falling back to the category's code.
func DeclaredExitCode(_ context.Context, req Request) (string, error) {
	d, err := fixture.LoadDirectives(req.Fixture.Path)
	if err != nil {
		return "", failure.Wrap(failure.Directive, req.Fixture.Path, "read header", err)
	}
	return d.ExpectedExitCode(req.Fixture.Category), nil
}

// String describes a pair for diagnostics.
func (p Pair) String() string {
	return fmt.Sprintf("%s (%s vs %s)", p.Kind, p.Reference.Name, p.Candidate.Name)
}
