// Package report aggregates fixture outcomes into a run summary and renders
// it for the terminal, the run log, JSON, markdown and HTML.
package report

import (
	"sort"
	"time"

	"github.com/ormasoftchile/compdiff/pkg/compare"
	"github.com/ormasoftchile/compdiff/pkg/failure"
	"github.com/ormasoftchile/compdiff/pkg/mode"
)

// Summary is the result of one run.
type Summary struct {
	Tags       []string         `json:"tags"`
	Label      string           `json:"label"`
	Compared   int              `json:"compared"`
	Passed     int              `json:"passed"`
	Failed     int              `json:"failed"`
	Errored    int              `json:"errored"`
	DurationMs int64            `json:"duration_ms"`
	Chunks     []ChunkSummary   `json:"chunks"`
	Failures   []FailureSummary `json:"failures,omitempty"`
}

// ChunkSummary counts the fixtures of one chunk.
type ChunkSummary struct {
	Name     string `json:"name"`
	Index    int    `json:"index"`
	Compared int    `json:"compared"`
	Passed   int    `json:"passed"`
}

// FailureSummary is one failed pair of one fixture.
type FailureSummary struct {
	Fixture  string            `json:"fixture"`
	Chunk    string            `json:"chunk"`
	Class    failure.Class     `json:"class"`
	Message  string            `json:"message"`
	Mismatch *compare.Mismatch `json:"mismatch,omitempty"`
}

// AllPassed reports whether every compared fixture passed.
func (s Summary) AllPassed() bool {
	return s.Passed == s.Compared
}

// Aggregator accumulates outcomes. It is owned by a single goroutine.
type Aggregator struct {
	summary Summary
	chunks  map[int]*ChunkSummary
	start   time.Time
}

// NewAggregator starts aggregating a run of m.
func NewAggregator(m mode.Mode) *Aggregator {
	return &Aggregator{
		summary: Summary{Tags: m.Tags, Label: m.Label()},
		chunks:  make(map[int]*ChunkSummary),
		start:   time.Now(),
	}
}

// Add counts one checked fixture.
func (a *Aggregator) Add(o *compare.Outcome) {
	f := o.Fixture
	c, ok := a.chunks[f.ChunkIndex]
	if !ok {
		c = &ChunkSummary{Name: f.Chunk, Index: f.ChunkIndex}
		a.chunks[f.ChunkIndex] = c
	}
	c.Compared++
	a.summary.Compared++

	switch o.Status {
	case compare.StatusPassed:
		c.Passed++
		a.summary.Passed++
	case compare.StatusFailed:
		a.summary.Failed++
	default:
		a.summary.Errored++
	}

	for _, ferr := range o.Failures {
		entry := FailureSummary{
			Fixture: f.Path,
			Chunk:   f.Chunk,
			Class:   ferr.Class,
			Message: ferr.Error(),
		}
		if m, ok := ferr.Cause.(*compare.Mismatch); ok {
			entry.Mismatch = m
			entry.Message = ferr.Message
		}
		a.summary.Failures = append(a.summary.Failures, entry)
	}
}

// Chunk returns the counts so far for the chunk at index.
func (a *Aggregator) Chunk(index int) (ChunkSummary, bool) {
	c, ok := a.chunks[index]
	if !ok {
		return ChunkSummary{}, false
	}
	return *c, true
}

// Summary returns the aggregated result.
func (a *Aggregator) Summary() Summary {
	s := a.summary
	s.DurationMs = time.Since(a.start).Milliseconds()
	s.Chunks = make([]ChunkSummary, 0, len(a.chunks))
	for _, c := range a.chunks {
		s.Chunks = append(s.Chunks, *c)
	}
	sort.Slice(s.Chunks, func(i, j int) bool { return s.Chunks[i].Index < s.Chunks[j].Index })
	s.Failures = append([]FailureSummary(nil), a.summary.Failures...)
	return s
}
