// Package corpus discovers the fixtures a run compares.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ormasoftchile/compdiff/pkg/config"
	"github.com/ormasoftchile/compdiff/pkg/fixture"
	"github.com/ormasoftchile/compdiff/pkg/mode"
)

// Chunk is one numbered fixture directory.
type Chunk struct {
	Name     string
	Index    int // position in the sorted chunk list
	Dir      string
	Fixtures []fixture.Fixture
}

// Options controls discovery.
type Options struct {
	Root string
	// Ext is the fixture file extension, including the dot.
	Ext string
	// Bound keeps chunks[:Bound+1]. Negative means no bound.
	Bound int
	// Only restricts discovery to one index into the bounded chunk list.
	Only *int
	Mode mode.Mode
	// Filter, when set, drops fixtures for which it evaluates false.
	Filter *Filter
}

// Root returns the corpus root for m: the extensions tree in extension
// mode, the regular tests tree otherwise.
func Root(cfg *config.Config, m mode.Mode) string {
	if m.Extension {
		return cfg.ExtensionsDir
	}
	return cfg.TestsDir
}

// ChunkDirs returns the sorted immediate subdirectories of root, bounded
// and restricted as opts describes.
func ChunkDirs(opts Options) ([]Chunk, error) {
	entries, err := os.ReadDir(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("read corpus root: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if opts.Bound >= 0 && opts.Bound+1 < len(names) {
		names = names[:opts.Bound+1]
	}

	chunks := make([]Chunk, len(names))
	for i, name := range names {
		chunks[i] = Chunk{Name: name, Index: i, Dir: filepath.Join(opts.Root, name)}
	}

	if opts.Only != nil {
		only := *opts.Only
		if only < 0 || only >= len(chunks) {
			return nil, fmt.Errorf("chunk index %d out of range: %d chunks available", only, len(chunks))
		}
		chunks = chunks[only : only+1]
	}
	return chunks, nil
}

// Discover returns every chunk with its fixtures. A fixture is a file with
// the fixture extension directly inside a folder named after one of the
// mode's categories, at any depth below the chunk.
func Discover(opts Options) ([]Chunk, error) {
	if opts.Ext == "" {
		opts.Ext = config.Default().FixtureExt
	}
	chunks, err := ChunkDirs(opts)
	if err != nil {
		return nil, err
	}

	for i := range chunks {
		c := &chunks[i]
		err := filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), opts.Ext) {
				return nil
			}
			if !opts.Mode.IncludesFolder(filepath.Base(filepath.Dir(path))) {
				return nil
			}
			f := fixture.New(path, c.Name, c.Index)
			if opts.Filter != nil {
				ok, err := opts.Filter.Match(f)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			c.Fixtures = append(c.Fixtures, f)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk chunk %s: %w", c.Name, err)
		}
	}
	return chunks, nil
}

// Count returns the number of fixtures across chunks.
func Count(chunks []Chunk) int {
	n := 0
	for _, c := range chunks {
		n += len(c.Fixtures)
	}
	return n
}
