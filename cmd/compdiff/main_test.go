package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ormasoftchile/compdiff/pkg/replay"
)

type workspace struct {
	dir      string
	config   string
	scenario string
}

func (w workspace) fixture(rel string) string {
	return filepath.Join(w.dir, "tests", filepath.FromSlash(rel))
}

func (w workspace) logs(name string) string {
	return filepath.Join(w.dir, "logs", name)
}

// newWorkspace lays out a two-fixture corpus, a config pointing at it and
// a recording of the candidate's exit codes.
func newWorkspace(t *testing.T, exits map[string]int) workspace {
	t.Helper()
	dir := t.TempDir()
	w := workspace{
		dir:      dir,
		config:   filepath.Join(dir, "compdiff.yaml"),
		scenario: filepath.Join(dir, "scenario.yaml"),
	}
	for _, rel := range []string{"00/valid/a.wacc", "00/syntaxErr/b.wacc"} {
		p := w.fixture(rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("begin skip end\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := "tests_dir: " + filepath.Join(dir, "tests") + "\n" +
		"extensions_dir: " + filepath.Join(dir, "ext") + "\n" +
		"logs_dir: " + filepath.Join(dir, "logs") + "\n"
	if err := os.WriteFile(w.config, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	s := &replay.Scenario{}
	for rel, code := range exits {
		s.Commands = append(s.Commands, replay.ScenarioCommand{
			Argv:     []string{"./compile", "-p", w.fixture(rel)},
			ExitCode: code,
		})
	}
	if err := replay.WriteScenario(w.scenario, s); err != nil {
		t.Fatal(err)
	}
	return w
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

var passing = map[string]int{"00/valid/a.wacc": 0, "00/syntaxErr/b.wacc": 100}

func TestNormalizeArgs(t *testing.T) {
	got := normalizeArgs([]string{"-p", "-lf", "-c", "3"})
	want := []string{"-p", "--log-fail", "-c", "3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunPassing(t *testing.T) {
	w := newWorkspace(t, passing)
	code, stdout, stderr := execute(t, "--config", w.config, "--replay", w.scenario, "-p", "-v")
	if code != 0 {
		t.Fatalf("exit = %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	for _, want := range []string{"Tested ./compile -p", "PASSED 00", "Passing 2/ 2 tests!"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
	data, err := os.ReadFile(w.logs("log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "\nPassing 2/ 2 tests for Syntactic" {
		t.Errorf("log.txt = %q", data)
	}
}

func TestRunRecordThenReplay(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	w := newWorkspace(t, passing)
	script := filepath.Join(w.dir, "compile.sh")
	body := "case \"$2\" in *syntaxErr*) exit 100;; esac\nexit 0\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(w.config, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("candidate:\n  argv: [\"sh\", \"" + script + "\"]\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	rec := filepath.Join(w.dir, "recorded.yaml")
	code, stdout, stderr := execute(t, "--config", w.config, "--record", rec, "-p")
	if code != 0 {
		t.Fatalf("record exit = %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	s, err := replay.LoadScenario(rec)
	if err != nil {
		t.Fatalf("load recording: %v", err)
	}
	if len(s.Commands) != 2 {
		t.Fatalf("recorded %d commands, want 2", len(s.Commands))
	}

	code, stdout, _ = execute(t, "--config", w.config, "--replay", rec, "-p")
	if code != 0 || !strings.Contains(stdout, "Passing 2/ 2 tests!") {
		t.Errorf("replay exit = %d\n%s", code, stdout)
	}
}

func TestRunBatchMode(t *testing.T) {
	w := newWorkspace(t, map[string]int{"00/valid/a.wacc": 0, "00/syntaxErr/b.wacc": 0})
	code, stdout, _ := execute(t, "--config", w.config, "--replay", w.scenario, "-p", "-lf", "--jobs", "2")
	if code != 1 {
		t.Fatalf("exit = %d, want 1\n%s", code, stdout)
	}
	data, err := os.ReadFile(w.logs("fail.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != w.fixture("00/syntaxErr/b.wacc")+"\n" {
		t.Errorf("fail.txt = %q", data)
	}
	if !strings.Contains(stdout, "Passing 1/ 2 tests!") {
		t.Errorf("stdout:\n%s", stdout)
	}
}

func TestRunFailFast(t *testing.T) {
	w := newWorkspace(t, map[string]int{"00/valid/a.wacc": 0, "00/syntaxErr/b.wacc": 0})
	code, stdout, _ := execute(t, "--config", w.config, "--replay", w.scenario, "-p", "--jobs", "1")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stdout, "reference: \"100\"") {
		t.Errorf("mismatch diagnostics missing:\n%s", stdout)
	}
	if _, err := os.Stat(w.logs("fail.txt")); !os.IsNotExist(err) {
		t.Errorf("fail.txt written without --log-fail: %v", err)
	}
}

func TestRunJSON(t *testing.T) {
	w := newWorkspace(t, passing)
	code, stdout, _ := execute(t, "--config", w.config, "--replay", w.scenario, "-p", "--json")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	var got struct {
		Compared int      `json:"compared"`
		Passed   int      `json:"passed"`
		Tags     []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if got.Compared != 2 || got.Passed != 2 || got.Tags[0] != "Syntactic" {
		t.Errorf("summary = %+v", got)
	}
}

func TestRunReports(t *testing.T) {
	w := newWorkspace(t, passing)
	md, html := filepath.Join(w.dir, "r.md"), filepath.Join(w.dir, "r.html")
	code, _, stderr := execute(t, "--config", w.config, "--replay", w.scenario, "-p", "--report", md, "--html", html)
	if code != 0 {
		t.Fatalf("exit = %d\n%s", code, stderr)
	}
	for _, p := range []string{md, html} {
		if _, err := os.Stat(p); err != nil {
			t.Error(err)
		}
	}
}

func TestRunFilter(t *testing.T) {
	w := newWorkspace(t, map[string]int{"00/valid/a.wacc": 0})
	code, stdout, _ := execute(t, "--config", w.config, "--replay", w.scenario, "-p", "--filter", `category == "valid"`)
	if code != 0 {
		t.Fatalf("exit = %d\n%s", code, stdout)
	}
	if !strings.Contains(stdout, "Passing 1/ 1 tests!") {
		t.Errorf("stdout:\n%s", stdout)
	}
}

func TestConfigErrors(t *testing.T) {
	w := newWorkspace(t, passing)
	tests := []struct {
		name string
		args []string
	}{
		{"no mode", []string{"--config", w.config}},
		{"chunk bound", []string{"--config", w.config, "-p", "-c", "16"}},
		{"only out of range", []string{"--config", w.config, "-p", "-o", "3"}},
		{"unknown flag", []string{"--config", w.config, "-p", "--bogus"}},
		{"positional arg", []string{"--config", w.config, "-p", "extra"}},
		{"bad filter", []string{"--config", w.config, "-p", "--filter", "chunk_index +"}},
		{"replay and record", []string{"--config", w.config, "-p", "--replay", w.scenario, "--record", filepath.Join(w.dir, "rec.yaml")}},
		{"missing config", []string{"--config", filepath.Join(w.dir, "missing.yaml"), "-p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			if code != 2 {
				t.Errorf("exit = %d, want 2\n%s", code, stderr)
			}
		})
	}
}

func TestListCmd(t *testing.T) {
	w := newWorkspace(t, passing)
	code, stdout, _ := execute(t, "list", "--config", w.config, "-s")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(stdout, w.fixture("00/syntaxErr/b.wacc")) || !strings.Contains(stdout, "2 fixtures for Semantic") {
		t.Errorf("list output:\n%s", stdout)
	}
}

func TestSchemaCmd(t *testing.T) {
	code, stdout, _ := execute(t, "schema")
	if code != 0 || !strings.Contains(stdout, "compdiff configuration") {
		t.Errorf("exit = %d, output:\n%s", code, stdout)
	}
}

func TestValidateCmd(t *testing.T) {
	w := newWorkspace(t, passing)
	code, stdout, _ := execute(t, "validate", w.config)
	if code != 0 || !strings.Contains(stdout, "is valid") {
		t.Errorf("valid config: exit = %d, output %q", code, stdout)
	}

	bad := filepath.Join(w.dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("tests_dir: x\nunknown_key: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	code, _, stderr := execute(t, "validate", bad)
	if code != 2 || !strings.Contains(stderr, "Validation failed") {
		t.Errorf("bad config: exit = %d, stderr %q", code, stderr)
	}
}

func TestVersionCmd(t *testing.T) {
	code, stdout, _ := execute(t, "version")
	if code != 0 || !strings.HasPrefix(stdout, "compdiff dev") {
		t.Errorf("exit = %d, output %q", code, stdout)
	}
}
