package replay

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ormasoftchile/compdiff/pkg/providers"
)

// ReplayExecutor implements CommandExecutor by matching invocations against
// pre-recorded scenario entries. Fail-closed: returns an error if no match.
// Entries may be matched any number of times; the compilers are
// deterministic, so repeated invocations share one recording.
type ReplayExecutor struct {
	scenario *Scenario
}

// NewReplayExecutor creates a ReplayExecutor from a loaded scenario.
func NewReplayExecutor(s *Scenario) *ReplayExecutor {
	return &ReplayExecutor{scenario: s}
}

// Execute returns the first recorded response whose argv equals inv.Argv and
// whose stdin, when recorded, equals inv.Stdin.
func (r *ReplayExecutor) Execute(ctx context.Context, inv providers.Invocation) (*providers.CommandResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, sc := range r.scenario.Commands {
		if !slices.Equal(inv.Argv, sc.Argv) {
			continue
		}
		if sc.Stdin != "" && sc.Stdin != inv.Stdin {
			continue
		}
		return &providers.CommandResult{
			Stdout:   []byte(sc.Stdout),
			Stderr:   []byte(sc.Stderr),
			ExitCode: sc.ExitCode,
		}, nil
	}
	return nil, fmt.Errorf("replay: no matching scenario entry for command: %s", inv.String())
}

// Recorder wraps another executor and keeps every invocation it performs so
// the run can be saved as a Scenario. Safe for concurrent use.
type Recorder struct {
	next providers.CommandExecutor

	mu       sync.Mutex
	commands []ScenarioCommand
}

// NewRecorder creates a Recorder delegating to next.
func NewRecorder(next providers.CommandExecutor) *Recorder {
	return &Recorder{next: next}
}

// Execute delegates to the wrapped executor and records successful runs.
func (r *Recorder) Execute(ctx context.Context, inv providers.Invocation) (*providers.CommandResult, error) {
	res, err := r.next.Execute(ctx, inv)
	if err != nil {
		return nil, err
	}
	entry := ScenarioCommand{
		Argv:     slices.Clone(inv.Argv),
		Stdin:    inv.Stdin,
		Dir:      inv.Dir,
		Stdout:   string(res.Stdout),
		Stderr:   string(res.Stderr),
		ExitCode: res.ExitCode,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.commands {
		if slices.Equal(c.Argv, entry.Argv) && c.Stdin == entry.Stdin {
			return res, nil
		}
	}
	r.commands = append(r.commands, entry)
	return res, nil
}

// Scenario returns a snapshot of everything recorded so far.
func (r *Recorder) Scenario() *Scenario {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &Scenario{Commands: slices.Clone(r.commands)}
}

// Save writes the recording to path.
func (r *Recorder) Save(path string) error {
	return WriteScenario(path, r.Scenario())
}
