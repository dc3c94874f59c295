package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ormasoftchile/compdiff/pkg/compare"
	"github.com/ormasoftchile/compdiff/pkg/failure"
	"github.com/ormasoftchile/compdiff/pkg/fixture"
	"github.com/ormasoftchile/compdiff/pkg/mode"
)

func outcome(path, chunk string, idx int, status string, failures ...*failure.Error) *compare.Outcome {
	return &compare.Outcome{
		Fixture:  fixture.New(path, chunk, idx),
		Status:   status,
		Failures: failures,
	}
}

func mismatch(path string) *failure.Error {
	return failure.Wrap(failure.Mismatch, path, "exit-code (category-exit-code vs candidate-exit-code)", &compare.Mismatch{
		Pair:                "exit-code",
		Reference:           "100",
		Candidate:           "0",
		NormalizedReference: "100",
		NormalizedCandidate: "0",
		Policy:              "exact",
		Diff:                "  string(\n- \t\"100\",\n+ \t\"0\",\n  )\n",
	})
}

func sampleSummary(t *testing.T) Summary {
	t.Helper()
	m, err := mode.Configure(mode.Flags{Parse: true, Semantic: true})
	if err != nil {
		t.Fatal(err)
	}
	a := NewAggregator(m)
	a.Add(outcome("tests/01/valid/a.wacc", "01", 1, compare.StatusPassed))
	a.Add(outcome("tests/00/valid/b.wacc", "00", 0, compare.StatusPassed))
	a.Add(outcome("tests/00/syntaxErr/c.wacc", "00", 0, compare.StatusFailed, mismatch("tests/00/syntaxErr/c.wacc")))
	a.Add(outcome("tests/00/semanticErr/d.wacc", "00", 0, compare.StatusError,
		failure.Wrap(failure.Process, "tests/00/semanticErr/d.wacc", "candidate-exit-code", os.ErrNotExist)))
	return a.Summary()
}

func TestAggregator(t *testing.T) {
	s := sampleSummary(t)
	if s.Compared != 4 || s.Passed != 2 || s.Failed != 1 || s.Errored != 1 {
		t.Errorf("counts = %d/%d/%d/%d", s.Compared, s.Passed, s.Failed, s.Errored)
	}
	if s.AllPassed() {
		t.Error("AllPassed should be false")
	}
	if len(s.Chunks) != 2 || s.Chunks[0].Name != "00" || s.Chunks[0].Compared != 3 || s.Chunks[0].Passed != 1 {
		t.Errorf("chunks = %+v", s.Chunks)
	}
	if len(s.Failures) != 2 {
		t.Fatalf("failures = %d, want 2", len(s.Failures))
	}
	if s.Failures[0].Mismatch == nil || s.Failures[0].Class != failure.Mismatch {
		t.Errorf("first failure = %+v", s.Failures[0])
	}
	if s.Failures[1].Class != failure.Process {
		t.Errorf("second failure class = %s", s.Failures[1].Class)
	}
	if s.Label != "Syntactic, Semantic" {
		t.Errorf("label = %q", s.Label)
	}
}

func TestAggregatorChunk(t *testing.T) {
	m, _ := mode.Configure(mode.Flags{Parse: true})
	a := NewAggregator(m)
	if _, ok := a.Chunk(0); ok {
		t.Error("expected no chunk yet")
	}
	a.Add(outcome("tests/00/valid/a.wacc", "00", 0, compare.StatusPassed))
	c, ok := a.Chunk(0)
	if !ok || c.Passed != 1 {
		t.Errorf("chunk = %+v, %v", c, ok)
	}
}

func TestAppendSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "log.txt")
	s := Summary{Tags: []string{"Extension", "Syntactic"}, Compared: 10, Passed: 9}

	for i := 0; i < 2; i++ {
		if err := AppendSummary(path, s); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "\nPassing 9/ 10 tests for Extension, Syntactic\nPassing 9/ 10 tests for Extension, Syntactic"
	if string(data) != want {
		t.Errorf("log = %q, want %q", data, want)
	}
}

func TestCanonicalJSON(t *testing.T) {
	s := sampleSummary(t)
	s.DurationMs = 0
	a, err := CanonicalJSON(s)
	if err != nil {
		t.Fatal(err)
	}
	b, err := CanonicalJSON(s)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("canonical output not stable")
	}
	// Canonical form sorts keys: "chunks" precedes "compared".
	if bytes.Index(a, []byte(`"chunks"`)) > bytes.Index(a, []byte(`"compared"`)) {
		t.Errorf("keys not sorted: %s", a)
	}
	var back Summary
	if err := json.Unmarshal(a, &back); err != nil {
		t.Fatal(err)
	}
	if back.Compared != 4 || back.Failures[0].Mismatch.Diff == "" {
		t.Errorf("round trip lost data: %+v", back)
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.Tested("./compile -p a.wacc")
	p.Outcome(outcome("tests/00/valid/a.wacc", "00", 0, compare.StatusPassed))
	if buf.Len() != 0 {
		t.Errorf("quiet printer wrote %q", buf.String())
	}

	p.Outcome(outcome("tests/00/syntaxErr/c.wacc", "00", 0, compare.StatusFailed, mismatch("tests/00/syntaxErr/c.wacc")))
	p.ChunkPassed("0a")
	p.Summary(Summary{Tags: []string{"Syntactic"}, Compared: 2, Passed: 1, Failed: 1})
	out := buf.String()
	for _, want := range []string{
		"tests/00/syntaxErr/c.wacc",
		`reference: "100"`,
		`candidate: "0"`,
		"PASSED 0A",
		"Passing 1/ 2 tests!",
		"These tests are tagged as Syntactic",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrinterVerbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	p.Tested("./compile -p a.wacc")
	p.Outcome(outcome("tests/00/valid/a.wacc", "00", 0, compare.StatusPassed))
	out := buf.String()
	if !strings.Contains(out, "Tested ./compile -p a.wacc") || !strings.Contains(out, GlyphPassed) {
		t.Errorf("verbose output = %q", out)
	}
}

func TestPrinterTruncates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	long := strings.Repeat("x", 500)
	p.Outcome(outcome("a.wacc", "00", 0, compare.StatusError, failure.New(failure.Process, "a.wacc", long)))
	for _, line := range strings.Split(buf.String(), "\n") {
		if len(line) > DefaultWidth+40 {
			t.Errorf("line not truncated: %d bytes", len(line))
		}
	}
}

func TestMarkdownAndHTML(t *testing.T) {
	s := sampleSummary(t)
	md := Markdown(s)
	for _, want := range []string{"# compdiff: Syntactic, Semantic", "Passing 2/ 4 tests", "| 00 | 3 | 1 |", "## Failures", "```diff"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	html, err := HTML(md)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(html, []byte("<table>")) || !bytes.Contains(html, []byte("<h2>Failures</h2>")) {
		t.Errorf("html = %s", html)
	}

	dir := t.TempDir()
	mdPath, htmlPath := filepath.Join(dir, "r.md"), filepath.Join(dir, "r.html")
	if err := WriteFiles(s, mdPath, htmlPath); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{mdPath, htmlPath} {
		if _, err := os.Stat(p); err != nil {
			t.Error(err)
		}
	}
}

func TestRenderTerminal(t *testing.T) {
	out := RenderTerminal("# Title\n\nbody\n", 80)
	if !strings.Contains(out, "Title") || !strings.Contains(out, "body") {
		t.Errorf("rendered = %q", out)
	}
}
