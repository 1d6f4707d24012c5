package align

import "io"

// Heuristic is an admissible lower bound on the remaining alignment cost of
// a state. Implementations keep per-read state between BeforeEveryAlignment
// and AfterEveryAlignment; the aligner guarantees the two calls bracket
// every Readmap.
//
// H must never overestimate the true remaining cost, and should be
// consistent (monotone along product-graph edges) so that the first final
// pop is optimal.
type Heuristic interface {
	BeforeEveryAlignment(r *Read)
	H(st State) Cost
	AfterEveryAlignment()
	PrintParams(w io.Writer)
	PrintStats(w io.Writer)
}
