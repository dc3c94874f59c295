package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/compdiff/pkg/config"
	"github.com/ormasoftchile/compdiff/pkg/corpus"
	"github.com/ormasoftchile/compdiff/pkg/failure"
	"github.com/ormasoftchile/compdiff/pkg/mode"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code:
// 0 when every comparison passed, 2 for configuration or usage errors and
// 1 for everything else.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(normalizeArgs(args))
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return failure.ClassOf(err).ExitCode()
}

// errReported marks failures that were already printed.
var errReported = errors.New("reported")

// normalizeArgs accepts the two-letter short flag -lf for --log-fail.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "-lf" {
			a = "--log-fail"
		}
		out[i] = a
	}
	return out
}

// selection holds the flags shared by every command that walks the corpus.
type selection struct {
	configPath string
	chunkBound int
	only       int
	flags      mode.Flags
	filter     string
}

func (s *selection) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&s.configPath, "config", "", "Path to configuration YAML (default: "+config.DefaultFile+" if present)")
	f.IntVarP(&s.chunkBound, "chunk-number", "c", 15, "Upper bound (inclusive) of chunk directories, 0-15")
	f.IntVarP(&s.only, "only", "o", -1, "Restrict to one chunk index")
	f.BoolVarP(&s.flags.Parse, "parse", "p", false, "Compare syntax analysis exit codes")
	f.BoolVarP(&s.flags.Tree, "tree-ast", "t", false, "Compare parse tree dumps")
	f.BoolVarP(&s.flags.Semantic, "semantic-analysis", "s", false, "Compare semantic analysis exit codes")
	f.BoolVarP(&s.flags.Execute, "execute", "x", false, "Compare the output of executing compiled programs")
	f.BoolVarP(&s.flags.Extension, "extension", "e", false, "Use the self-describing extension corpus")
	f.StringVar(&s.filter, "filter", "", "Fixture filter expression, e.g. 'category == \"valid\"'")
}

// loadConfig loads and validates the configuration. Validation problems
// are printed to stderr.
func (s *selection) loadConfig(stderr io.Writer) (*config.Config, error) {
	path := s.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			path = config.DefaultFile
		}
	}

	var (
		cfg  *config.Config
		errs []*config.ValidationError
	)
	if path == "" {
		cfg = config.Default()
		errs = config.Validate(cfg)
	} else {
		cfg, errs = config.ValidateFile(path)
	}
	if printValidation(stderr, errs) {
		return nil, failure.Wrap(failure.Config, "", "invalid configuration", errReported)
	}
	return cfg, nil
}

// resolve builds the run's Mode and discovers its fixtures.
func (s *selection) resolve(cfg *config.Config, cmd *cobra.Command) (mode.Mode, []corpus.Chunk, error) {
	m, err := mode.Configure(s.flags)
	if err != nil {
		return mode.Mode{}, nil, failure.Wrap(failure.Config, "", "select mode", err)
	}
	if s.chunkBound < 0 || s.chunkBound > 15 {
		return mode.Mode{}, nil, failure.New(failure.Config, "", fmt.Sprintf("--chunk-number must be between 0 and 15, got %d", s.chunkBound))
	}
	filter, err := corpus.CompileFilter(s.filter)
	if err != nil {
		return mode.Mode{}, nil, failure.Wrap(failure.Config, "", "filter", err)
	}

	opts := corpus.Options{
		Root:   corpus.Root(cfg, m),
		Ext:    cfg.FixtureExt,
		Bound:  s.chunkBound,
		Mode:   m,
		Filter: filter,
	}
	if cmd.Flags().Changed("only") {
		only := s.only
		opts.Only = &only
	}
	chunks, err := corpus.Discover(opts)
	if err != nil {
		return mode.Mode{}, nil, failure.Wrap(failure.Config, "", "discover fixtures", err)
	}
	return m, chunks, nil
}

func printValidation(w io.Writer, errs []*config.ValidationError) bool {
	var hard []*config.ValidationError
	for _, e := range errs {
		if e.Severity == "warning" {
			fmt.Fprintf(w, "  ⚠ [%s] %s\n", e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(w, "    at: %s\n", e.Path)
			}
			continue
		}
		hard = append(hard, e)
	}
	if len(hard) == 0 {
		return false
	}
	fmt.Fprintf(w, "Validation failed: %d error(s)\n\n", len(hard))
	for i, e := range hard {
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
		if e.Path != "" {
			fmt.Fprintf(w, "     at: %s\n", e.Path)
		}
	}
	return true
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	sel := &selection{}
	opts := &runOptions{timeout: 30 * time.Second}

	root := &cobra.Command{
		Use:   "compdiff",
		Short: "Differential test harness for a compiler under test",
		Long: `compdiff runs a candidate compiler and a trusted reference compiler over a
corpus of source fixtures and checks that they agree.

Exit codes:
  0  every compared fixture passed
  1  at least one fixture failed or could not be checked
  2  invalid configuration or usage`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return failure.Wrap(failure.Config, "", "usage", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, sel, opts, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return failure.Wrap(failure.Config, "", "usage", err)
	})

	sel.register(root)
	opts.register(root)

	root.AddCommand(newListCmd(sel, stdout, stderr))
	root.AddCommand(newSchemaCmd(stdout))
	root.AddCommand(newValidateCmd(stdout, stderr))
	root.AddCommand(newVersionCmd(stdout))
	return root
}
