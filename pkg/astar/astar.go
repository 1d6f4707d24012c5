// Package astar provides the admissible heuristics that guide the A*
// aligner: a seed-index heuristic, a memoized prefix-lookahead heuristic,
// and a trivial zero heuristic that degrades the search to Dijkstra.
//
// All heuristics implement [align.Heuristic] and hold a non-owning
// reference to the shared read-only graph and cost model.
package astar

import (
	"fmt"
	"io"

	"github.com/seqwork/grafalign/pkg/align"
)

// None is the zero heuristic. A* with None is plain Dijkstra over the
// product graph; it is the baseline the real heuristics are measured
// against and the reference oracle in tests.
type None struct{}

// BeforeEveryAlignment implements [align.Heuristic].
func (None) BeforeEveryAlignment(*align.Read) {}

// H always returns 0.
func (None) H(align.State) align.Cost { return 0 }

// AfterEveryAlignment implements [align.Heuristic].
func (None) AfterEveryAlignment() {}

// PrintParams implements [align.Heuristic].
func (None) PrintParams(w io.Writer) {
	fmt.Fprintln(w, "  heuristic: none (dijkstra)")
}

// PrintStats implements [align.Heuristic].
func (None) PrintStats(io.Writer) {}
