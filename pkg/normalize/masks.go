package normalize

import (
	"fmt"

	"github.com/coregx/coregex"
)

// maxMaskPasses bounds re-application of a user mask. A rule whose
// replacement keeps producing new matches stops after this many passes.
const maxMaskPasses = 8

// Rule is a user-supplied masking rule.
type Rule struct {
	Pattern string
	Replace string
}

// CompileMasks compiles rules into transforms. Each transform re-applies its
// rule until the output stops changing.
func CompileMasks(rules []Rule) ([]Transform, error) {
	var out []Transform
	for _, r := range rules {
		re, err := coregex.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile mask %q: %w", r.Pattern, err)
		}
		replace := r.Replace
		out = append(out, func(s string) string {
			for i := 0; i < maxMaskPasses; i++ {
				next := re.ReplaceAllString(s, replace)
				if next == s {
					break
				}
				s = next
			}
			return s
		})
	}
	return out, nil
}

// WithMasks returns a copy of p with extra transforms appended.
func (p Policy) WithMasks(masks []Transform) Policy {
	if len(masks) == 0 {
		return p
	}
	steps := make([]Transform, 0, len(p.Steps)+len(masks))
	steps = append(steps, p.Steps...)
	steps = append(steps, masks...)
	return Policy{Name: p.Name + "+masks", Steps: steps}
}
