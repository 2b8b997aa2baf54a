package tfmutate

import "strings"

// ParameterPath is an ordered, non-empty sequence of attribute path
// segments. Depth 1 targets a top-level attribute of a block; deeper paths
// descend through nested sub-blocks, e.g.
// ["instance_market_options", "spot_options", "max_price"].
type ParameterPath []string

// ParsePath splits a dotted parameter name into its path segments.
func ParsePath(s string) ParameterPath {
	return ParameterPath(strings.Split(s, "."))
}

// Leaf returns the final path segment, the attribute being assigned.
func (p ParameterPath) Leaf() string {
	return p[len(p)-1]
}

// Nested reports whether the path descends into sub-blocks.
func (p ParameterPath) Nested() bool {
	return len(p) > 1
}

func (p ParameterPath) String() string {
	return strings.Join(p, ".")
}
