package failure

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassExitCodes(t *testing.T) {
	cases := []struct {
		class Class
		want  int
	}{
		{Mismatch, 1},
		{Process, 1},
		{Directive, 1},
		{Internal, 1},
		{Config, 2},
	}
	for _, tc := range cases {
		if got := tc.class.ExitCode(); got != tc.want {
			t.Errorf("%s.ExitCode() = %d, want %d", tc.class, got, tc.want)
		}
	}
}

func TestErrorFormat(t *testing.T) {
	e := New(Mismatch, "tests/00/valid/a.wacc", "exit code differs")
	if got := e.Error(); got != "MISMATCH tests/00/valid/a.wacc: exit code differs" {
		t.Errorf("Error() = %q", got)
	}

	e = Wrap(Config, "", "read config", errors.New("boom"))
	if got := e.Error(); got != "CONFIG: read config: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestClassOfWrapped(t *testing.T) {
	inner := New(Process, "x.wacc", "timed out")
	err := fmt.Errorf("check: %w", inner)
	if ClassOf(err) != Process {
		t.Errorf("ClassOf = %s, want PROCESS", ClassOf(err))
	}
	if !Is(err, Process) {
		t.Error("expected Is(err, Process)")
	}
	if Is(err, Mismatch) {
		t.Error("did not expect Is(err, Mismatch)")
	}
	if ClassOf(errors.New("plain")) != Internal {
		t.Error("plain errors should classify as INTERNAL")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root")
	e := Wrap(Internal, "", "write log", cause)
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}
