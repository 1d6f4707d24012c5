// Package align implements optimal sequence-to-graph alignment: an A*
// search over the product of a sequence graph and the positions of a read,
// guided by a pluggable admissible heuristic.
//
// The package owns the edit-cost model, the search state and its sparse
// stores, the A* driver ([Aligner.Readmap]), and a parallel multi-read
// [Driver]. Concrete heuristics live in package astar; an [Aligner] only
// sees the [Heuristic] interface.
package align

import "github.com/seqwork/grafalign/pkg/graph"

// Cost is an alignment cost. Costs are non-negative and compared with the
// shared tolerance [EQ].
type Cost float64

// Costs is the edit-cost model applied to product-graph edges. Jump edges
// are always free; Orig edges charge Match (normally zero).
type Costs struct {
	Match Cost `toml:"match"`
	Subst Cost `toml:"subst"`
	Ins   Cost `toml:"ins"`
	Del   Cost `toml:"del"`
}

// DefaultCosts returns the standard edit model: free matches, unit
// substitutions, gap cost 5.
func DefaultCosts() Costs {
	return Costs{Match: 0, Subst: 1, Ins: 5, Del: 5}
}

// EdgeCost returns the cost charged for traversing e.
func (c Costs) EdgeCost(e graph.Edge) Cost {
	switch e.Type {
	case graph.Orig:
		return c.Match
	case graph.Jump:
		return 0
	case graph.Sub:
		return c.Subst
	case graph.Ins:
		return c.Ins
	case graph.Del:
		return c.Del
	}
	panic("align: unknown edge type")
}

// MinMismatchCost returns the cheapest way to pay for one edit. Heuristics
// multiply their error lower bounds by this value to stay admissible.
func (c Costs) MinMismatchCost() Cost {
	m := c.Subst
	if c.Ins < m {
		m = c.Ins
	}
	if c.Del < m {
		m = c.Del
	}
	return m
}
