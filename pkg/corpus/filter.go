package corpus

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ormasoftchile/compdiff/pkg/fixture"
)

// Filter is a compiled fixture predicate. Expressions see the variables
// path, name, chunk, chunk_index and category, for example
//
//	category == "valid" && name startsWith "array"
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles src. An empty expression yields a nil filter.
func CompileFilter(src string) (*Filter, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	program, err := expr.Compile(src, expr.Env(filterEnv(fixture.Fixture{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}
	return &Filter{source: src, program: program}, nil
}

// Match evaluates the filter for f.
func (flt *Filter) Match(f fixture.Fixture) (bool, error) {
	out, err := expr.Run(flt.program, filterEnv(f))
	if err != nil {
		return false, fmt.Errorf("eval filter %q on %s: %w", flt.source, f.Path, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("filter %q did not return bool (got %T)", flt.source, out)
	}
	return ok, nil
}

// String returns the filter source.
func (flt *Filter) String() string {
	return flt.source
}

func filterEnv(f fixture.Fixture) map[string]any {
	return map[string]any{
		"path":        f.Path,
		"name":        f.Name(),
		"chunk":       f.Chunk,
		"chunk_index": f.ChunkIndex,
		"category":    string(f.Category),
	}
}
