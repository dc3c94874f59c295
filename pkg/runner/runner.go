// Package runner checks discovered fixtures on a bounded worker pool and
// feeds their outcomes to the aggregator and printer in one goroutine.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ormasoftchile/compdiff/pkg/compare"
	"github.com/ormasoftchile/compdiff/pkg/corpus"
	"github.com/ormasoftchile/compdiff/pkg/failure"
	"github.com/ormasoftchile/compdiff/pkg/fixture"
	"github.com/ormasoftchile/compdiff/pkg/report"
)

// Checker checks one fixture. *compare.Comparator implements it.
type Checker interface {
	Check(ctx context.Context, f fixture.Fixture) (*compare.Outcome, error)
}

// Options configures a Runner.
type Options struct {
	// Jobs is the number of concurrent fixture checks. Default: runtime.NumCPU()
	Jobs int
	// Describe renders the candidate invocation for verbose output.
	Describe func(fixture.Fixture) string
	// OnOutcome is called from the collecting goroutine after each
	// fixture is counted.
	OnOutcome func(done, total int, o *compare.Outcome)
}

// Runner drives a run over a discovered corpus.
type Runner struct {
	checker Checker
	agg     *report.Aggregator
	printer *report.Printer
	opts    Options
}

// New creates a Runner. printer may be nil to suppress console output.
func New(checker Checker, agg *report.Aggregator, printer *report.Printer, opts Options) *Runner {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	return &Runner{checker: checker, agg: agg, printer: printer, opts: opts}
}

type result struct {
	outcome *compare.Outcome
	err     error
}

// Run checks every fixture in chunks. The first error returned by the
// checker cancels the run: in-flight invocations are killed, no new
// fixtures start and the error is returned. Outcomes arriving after that
// are not counted.
func (r *Runner) Run(ctx context.Context, chunks []corpus.Chunk) (report.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	total := corpus.Count(chunks)
	jobs := make(chan fixture.Fixture, r.opts.Jobs)
	results := make(chan result, r.opts.Jobs)
	var wg sync.WaitGroup

	for i := 0; i < r.opts.Jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, jobs, results)
		}()
	}

	go func() {
		defer close(jobs)
		for _, c := range chunks {
			for _, f := range c.Fixtures {
				select {
				case jobs <- f:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	banners := newBannerQueue(chunks)
	r.flushBanners(banners)

	var firstErr error
	done := 0
	for res := range results {
		if firstErr != nil {
			continue
		}
		done++
		f := res.outcome.Fixture
		if r.printer != nil {
			if r.opts.Describe != nil {
				r.printer.Tested(r.opts.Describe(f))
			}
			r.printer.Outcome(res.outcome)
		}
		r.agg.Add(res.outcome)
		if r.opts.OnOutcome != nil {
			r.opts.OnOutcome(done, total, res.outcome)
		}
		if res.err != nil {
			firstErr = res.err
			cancel()
			continue
		}
		banners.done(f.ChunkIndex)
		r.flushBanners(banners)
	}

	summary := r.agg.Summary()
	if firstErr != nil {
		return summary, firstErr
	}
	if err := ctx.Err(); err != nil && done < total {
		return summary, failure.Wrap(failure.Internal, "", "run interrupted", err)
	}
	return summary, nil
}

func (r *Runner) worker(ctx context.Context, jobs <-chan fixture.Fixture, results chan<- result) {
	for f := range jobs {
		if ctx.Err() != nil {
			return
		}
		out, err := r.checker.Check(ctx, f)
		if out == nil {
			out = &compare.Outcome{Fixture: f, Status: compare.StatusError}
			if err == nil {
				err = fmt.Errorf("check %s: no outcome", f.Path)
			}
		}
		results <- result{outcome: out, err: err}
	}
}

func (r *Runner) flushBanners(q *bannerQueue) {
	for _, name := range q.ready() {
		if r.printer != nil {
			r.printer.ChunkPassed(name)
		}
	}
}

// bannerQueue releases chunk banners in chunk order once every fixture of
// a chunk and of all chunks before it has been counted.
type bannerQueue struct {
	names     []string
	remaining []int
	position  map[int]int // chunk index -> slot
	next      int
}

func newBannerQueue(chunks []corpus.Chunk) *bannerQueue {
	q := &bannerQueue{
		names:     make([]string, len(chunks)),
		remaining: make([]int, len(chunks)),
		position:  make(map[int]int, len(chunks)),
	}
	for i, c := range chunks {
		q.names[i] = c.Name
		q.remaining[i] = len(c.Fixtures)
		q.position[c.Index] = i
	}
	return q
}

func (q *bannerQueue) done(chunkIndex int) {
	if i, ok := q.position[chunkIndex]; ok {
		q.remaining[i]--
	}
}

func (q *bannerQueue) ready() []string {
	var out []string
	for q.next < len(q.names) && q.remaining[q.next] == 0 {
		out = append(out, q.names[q.next])
		q.next++
	}
	return out
}
