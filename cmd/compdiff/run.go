package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/compdiff/pkg/compare"
	"github.com/ormasoftchile/compdiff/pkg/corpus"
	"github.com/ormasoftchile/compdiff/pkg/extract"
	"github.com/ormasoftchile/compdiff/pkg/failure"
	"github.com/ormasoftchile/compdiff/pkg/fixture"
	"github.com/ormasoftchile/compdiff/pkg/providers"
	"github.com/ormasoftchile/compdiff/pkg/replay"
	"github.com/ormasoftchile/compdiff/pkg/report"
	"github.com/ormasoftchile/compdiff/pkg/runner"
	"github.com/ormasoftchile/compdiff/pkg/tui"
)

// runOptions are the flags that only apply to a comparison run.
type runOptions struct {
	logFail  bool
	jobs     int
	timeout  time.Duration
	json     bool
	report   string
	html     string
	progress bool
	replay   string
	record   string
	verbose  bool
}

func (o *runOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVarP(&o.logFail, "log-fail", "l", false, "Batch mode: log failing fixtures to logs/fail.txt and keep going (also -lf)")
	f.IntVar(&o.jobs, "jobs", 0, "Concurrent fixture checks (default: config jobs, else number of CPUs)")
	f.DurationVar(&o.timeout, "timeout", 30*time.Second, "Per-invocation timeout (overrides config)")
	f.BoolVar(&o.json, "json", false, "Print the run summary as canonical JSON")
	f.StringVar(&o.report, "report", "", "Write a markdown report to this path ('-' renders it to stdout)")
	f.StringVar(&o.html, "html", "", "Write an HTML report to this path")
	f.BoolVar(&o.progress, "progress", false, "Show a live progress view when stdout is a terminal")
	f.StringVar(&o.replay, "replay", "", "Replay compiler invocations from a recorded scenario YAML")
	f.StringVar(&o.record, "record", "", "Record compiler invocations to a scenario YAML")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Print every tested invocation")
}

func runCompare(cmd *cobra.Command, sel *selection, opts *runOptions, stdout, stderr io.Writer) error {
	cfg, err := sel.loadConfig(stderr)
	if err != nil {
		return err
	}
	m, chunks, err := sel.resolve(cfg, cmd)
	if err != nil {
		return err
	}
	if opts.replay != "" && opts.record != "" {
		return failure.New(failure.Config, "", "--replay and --record are mutually exclusive")
	}

	timeout := cfg.TimeoutDuration()
	if cmd.Flags().Changed("timeout") {
		timeout = opts.timeout
	}
	jobs := cfg.Jobs
	if cmd.Flags().Changed("jobs") {
		jobs = opts.jobs
	}

	var (
		exec     providers.CommandExecutor = &providers.RealExecutor{Timeout: timeout}
		recorder *replay.Recorder
	)
	if opts.replay != "" {
		scenario, err := replay.LoadScenario(opts.replay)
		if err != nil {
			return failure.Wrap(failure.Config, "", "load replay scenario", err)
		}
		exec = replay.NewReplayExecutor(scenario)
	}
	if opts.record != "" {
		recorder = replay.NewRecorder(exec)
		exec = recorder
	}

	x, err := extract.New(exec, cfg)
	if err != nil {
		return failure.Wrap(failure.Config, "", "compile masks", err)
	}

	var failLog *compare.FailureLog
	if opts.logFail {
		failLog, err = compare.OpenFailureLog(cfg.FailPath())
		if err != nil {
			return failure.Wrap(failure.Internal, "", "open failure log", err)
		}
		defer failLog.Close()
	}
	comparator := compare.New(x.Pairs(m), m.Args, failLog)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Console output is buffered while the progress view owns the terminal.
	var (
		console  io.Writer = stdout
		buffered bytes.Buffer
		session  *tui.Session
	)
	if opts.json {
		console = io.Discard
	}
	if opts.progress && !opts.json && isTerminal(stdout) {
		console = &buffered
		session = tui.Start(stdout, m.Label(), corpus.Count(chunks), cancel)
	}
	printer := report.NewPrinter(console, opts.verbose)

	runOpts := runner.Options{
		Jobs: jobs,
		Describe: func(f fixture.Fixture) string {
			return x.CandidateInvocation(extract.Request{Fixture: f, Args: m.Args}).String()
		},
	}
	if session != nil {
		runOpts.OnOutcome = session.Observe
	}

	r := runner.New(comparator, report.NewAggregator(m), printer, runOpts)
	summary, runErr := r.Run(ctx, chunks)

	if session != nil {
		if err := session.Finish(); err != nil {
			fmt.Fprintf(stderr, "  ⚠ progress view: %v\n", err)
		}
		io.Copy(stdout, &buffered)
	}

	if err := report.AppendSummary(cfg.LogPath(), summary); err != nil {
		fmt.Fprintf(stderr, "  ⚠ %v\n", err)
	}
	if recorder != nil {
		if err := recorder.Save(opts.record); err != nil {
			fmt.Fprintf(stderr, "  ⚠ save recording: %v\n", err)
		}
	}
	if err := writeReports(summary, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "  ⚠ %v\n", err)
	}

	if opts.json {
		if err := report.WriteJSON(stdout, summary); err != nil {
			return failure.Wrap(failure.Internal, "", "write json", err)
		}
	} else {
		printer.Summary(summary)
	}

	if runErr != nil {
		var ferr *failure.Error
		if errors.As(runErr, &ferr) && ferr.Fixture != "" && !opts.json {
			// The printer has already listed the failing fixture.
			return failure.Wrap(ferr.Class, "", "run stopped", errReported)
		}
		return runErr
	}
	if !summary.AllPassed() {
		return failure.Wrap(failure.Mismatch, "", fmt.Sprintf("%d of %d fixtures failed", summary.Compared-summary.Passed, summary.Compared), errReported)
	}
	return nil
}

func writeReports(s report.Summary, opts *runOptions, stdout io.Writer) error {
	if opts.report == "-" {
		md := report.Markdown(s)
		if isTerminal(stdout) {
			md = report.RenderTerminal(md, 100)
		}
		fmt.Fprintln(stdout, md)
		return report.WriteFiles(s, "", opts.html)
	}
	return report.WriteFiles(s, opts.report, opts.html)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && tui.IsTerminal(f)
}
