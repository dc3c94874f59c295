// Package compare runs a mode's extractor pairs over a fixture and asserts
// that both sides agree after normalization.
package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ormasoftchile/compdiff/pkg/extract"
	"github.com/ormasoftchile/compdiff/pkg/failure"
	"github.com/ormasoftchile/compdiff/pkg/fixture"
)

// Status of a checked fixture.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusError  = "error"
)

// Mismatch describes one pair whose normalized values differ.
type Mismatch struct {
	Pair                string `json:"pair"`
	Reference           string `json:"reference"`
	Candidate           string `json:"candidate"`
	NormalizedReference string `json:"normalized_reference"`
	NormalizedCandidate string `json:"normalized_candidate"`
	Policy              string `json:"policy"`
	Diff                string `json:"diff"`
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%s: expected %q, got %q", m.Pair, m.NormalizedReference, m.NormalizedCandidate)
}

// Outcome is the result of checking one fixture.
type Outcome struct {
	Fixture  fixture.Fixture  `json:"fixture"`
	Status   string           `json:"status"`
	Failures []*failure.Error `json:"-"`
	Duration time.Duration    `json:"duration_ns"`
}

// Passed reports whether every pair matched.
func (o *Outcome) Passed() bool {
	return o.Status == StatusPassed
}

// Mismatches returns the mismatch details of the outcome's failures.
func (o *Outcome) Mismatches() []*Mismatch {
	var out []*Mismatch
	for _, f := range o.Failures {
		var m *Mismatch
		if errors.As(f, &m) {
			out = append(out, m)
		}
	}
	return out
}

// Comparator checks fixtures against a fixed set of pairs.
type Comparator struct {
	pairs []extract.Pair
	args  []string
	// log is set in batch mode: failures are recorded and checking goes on.
	log *FailureLog
}

// New creates a Comparator. A nil log selects fail-fast mode.
func New(pairs []extract.Pair, args []string, log *FailureLog) *Comparator {
	return &Comparator{pairs: pairs, args: args, log: log}
}

// Batch reports whether failures are logged instead of returned.
func (c *Comparator) Batch() bool {
	return c.log != nil
}

// Check runs every pair for f. In batch mode the fixture path is appended
// to the failure log once and the returned error is nil unless the log
// cannot be written. Otherwise the first failure is returned as an error
// and the remaining pairs are skipped.
func (c *Comparator) Check(ctx context.Context, f fixture.Fixture) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{Fixture: f, Status: StatusPassed}
	req := extract.Request{Fixture: f, Args: c.args}

	for _, p := range c.pairs {
		ferr := c.checkPair(ctx, p, req)
		if ferr == nil {
			continue
		}
		out.Failures = append(out.Failures, ferr)
		if ferr.Class == failure.Mismatch {
			if out.Status == StatusPassed {
				out.Status = StatusFailed
			}
		} else {
			out.Status = StatusError
		}
		if !c.Batch() {
			out.Duration = time.Since(start)
			return out, ferr
		}
	}
	out.Duration = time.Since(start)

	if !out.Passed() && c.Batch() {
		if err := c.log.Append(f.Path); err != nil {
			return out, failure.Wrap(failure.Internal, f.Path, "write failure log", err)
		}
	}
	return out, nil
}

func (c *Comparator) checkPair(ctx context.Context, p extract.Pair, req extract.Request) *failure.Error {
	ref, err := p.Reference.Extract(ctx, req)
	if err != nil {
		return classed(req.Fixture.Path, p.Reference.Name, err)
	}
	cand, err := p.Candidate.Extract(ctx, req)
	if err != nil {
		return classed(req.Fixture.Path, p.Candidate.Name, err)
	}

	nref, ncand := p.Policy.Apply(ref), p.Policy.Apply(cand)
	if nref == ncand {
		return nil
	}
	m := &Mismatch{
		Pair:                string(p.Kind),
		Reference:           ref,
		Candidate:           cand,
		NormalizedReference: nref,
		NormalizedCandidate: ncand,
		Policy:              p.Policy.Name,
		Diff:                cmp.Diff(nref, ncand),
	}
	return failure.Wrap(failure.Mismatch, req.Fixture.Path, p.String(), m)
}

func classed(path, side string, err error) *failure.Error {
	var ferr *failure.Error
	if errors.As(err, &ferr) {
		return ferr
	}
	return failure.Wrap(failure.Process, path, side, err)
}
