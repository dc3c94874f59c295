package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when an invocation exceeds its deadline.
var ErrTimeout = errors.New("command timed out")

// RealExecutor runs commands via os/exec with timeout support.
type RealExecutor struct {
	// Timeout bounds each invocation. Zero means no per-invocation limit
	// beyond the caller's context.
	Timeout time.Duration
}

// Execute runs inv and captures stdout and stderr separately.
func (r *RealExecutor) Execute(ctx context.Context, inv Invocation) (*CommandResult, error) {
	if len(inv.Argv) == 0 {
		return nil, fmt.Errorf("execute: empty argv")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	// #nosec G204 -- argv comes from the harness configuration.
	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(cmd.Environ(), inv.Env...)
	}
	if inv.Stdin != "" {
		cmd.Stdin = strings.NewReader(inv.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("execute %q: %w after %s", inv.String(), ErrTimeout, duration.Round(time.Millisecond))
		}
		return nil, fmt.Errorf("execute %q: %w", inv.String(), ctxErr)
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("execute command %q: %w", inv.Argv[0], err)
		}
	}

	return &CommandResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
		Duration: duration,
	}, nil
}

// IsExecNotFound returns true when the error indicates the executable was not found.
func IsExecNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var execErr *exec.Error
	return errors.As(err, &execErr)
}
