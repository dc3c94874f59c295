// Package providers defines the CommandExecutor interface used to run the
// external collaborators (candidate compiler, reference compiler, toolchain,
// emulator) and its real implementation.
package providers

import (
	"context"
	"strings"
	"time"
)

// Invocation is a structured external command: an explicit argv, optional
// stdin, and an optional working directory. No shell is involved.
type Invocation struct {
	Argv  []string `yaml:"argv" json:"argv"`
	Stdin string   `yaml:"stdin,omitempty" json:"stdin,omitempty"`
	Dir   string   `yaml:"dir,omitempty" json:"dir,omitempty"`
	Env   []string `yaml:"-" json:"-"`
}

// String renders the invocation for diagnostics.
func (inv Invocation) String() string {
	return strings.Join(inv.Argv, " ")
}

// CommandResult holds the output of a single command execution.
type CommandResult struct {
	Stdout   []byte        `json:"stdout"`
	Stderr   []byte        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// Combined returns stdout followed by stderr.
func (r *CommandResult) Combined() string {
	return string(r.Stdout) + string(r.Stderr)
}

// CommandExecutor abstracts real vs replayed command execution.
// Implementations: RealExecutor, replay.ReplayExecutor, replay.Recorder.
//
// A non-zero exit status is reported in CommandResult.ExitCode, not as an
// error. Errors mean the command could not be run to completion.
type CommandExecutor interface {
	Execute(ctx context.Context, inv Invocation) (*CommandResult, error)
}
