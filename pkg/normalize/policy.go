package normalize

// Policy is an ordered composition of transforms. The comparator applies the
// same Policy to the reference value and the candidate value.
type Policy struct {
	Name  string
	Steps []Transform
}

// Apply runs every step in order.
func (p Policy) Apply(s string) string {
	for _, step := range p.Steps {
		s = step(s)
	}
	return s
}

// WithCollapse returns a copy of p that first removes all whitespace, so
// later steps such as address masking see the collapsed text.
func (p Policy) WithCollapse() Policy {
	steps := make([]Transform, 0, len(p.Steps)+1)
	steps = append(steps, CollapseWhitespace)
	steps = append(steps, p.Steps...)
	return Policy{Name: p.Name + "+collapse", Steps: steps}
}

var (
	// Exact compares trimmed values, used for exit codes.
	Exact = Policy{Name: "exact", Steps: []Transform{TrimSpace}}

	// Tree compares parse-tree or AST dumps.
	Tree = Policy{Name: "tree", Steps: []Transform{RemoveTabs, TrimSpace}}

	// Execution compares program output captured from a run. The trailing
	// trim keeps the policy idempotent when a masked address sat at an edge.
	Execution = Policy{Name: "execution", Steps: []Transform{StripLines, RemoveTabs, MaskAddresses, TrimSpace}}
)
