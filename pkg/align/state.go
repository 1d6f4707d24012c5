package align

import (
	"fmt"
	"math"

	"github.com/seqwork/grafalign/pkg/graph"
)

// eqEps is the absolute tolerance for cost comparisons. It is shared by the
// aligner, the heuristics and the tests so that co-optimal finals are never
// missed to floating-point noise.
const eqEps = 1e-9

// EQ reports whether two costs are equal within tolerance.
func EQ(a, b Cost) bool {
	return math.Abs(float64(a-b)) < eqEps
}

// Inf is the cost of an unreached state.
var Inf = Cost(math.Inf(1))

// Read is a query sequence over {A, C, G, T}.
type Read struct {
	Comment string
	Seq     []byte
}

// Len returns the read length.
func (r *Read) Len() int { return len(r.Seq) }

// ValidateRead checks that every read character is an upper-case
// nucleotide. The aligner itself assumes validated input.
func ValidateRead(r *Read) error {
	for i, c := range r.Seq {
		switch c {
		case 'A', 'C', 'G', 'T':
		default:
			return fmt.Errorf("read %s: non-ACGT character %q at position %d", r.Comment, c, i)
		}
	}
	return nil
}

// State is a vertex of the product graph: the first I read characters have
// been aligned along a path ending at graph node V, at total cost Cost.
// PrevI and PrevV identify the state this one was reached from, or -1 for
// the start state.
type State struct {
	Cost  Cost
	I     int
	V     int
	PrevI int
	PrevV int
}

func (s State) String() string {
	return fmt.Sprintf("<%g, i=%d, v=%d>", float64(s.Cost), s.I, s.V)
}

// stateKey packs (read index, node) into one map key.
type stateKey uint64

func key(i, v int) stateKey {
	return stateKey(uint64(uint32(i))<<32 | uint64(uint32(v)))
}

// pathTable is the sparse best-cost store p[i][v]. A missing entry means
// cost +inf.
type pathTable map[stateKey]State

// get returns the best known state at (i, v), or a state with infinite cost.
func (p pathTable) get(i, v int) State {
	if s, ok := p[key(i, v)]; ok {
		return s
	}
	return State{Cost: Inf, I: i, V: v, PrevI: -1, PrevV: -1}
}

// optimize installs s iff it improves on the best known cost at (s.I, s.V),
// reporting whether it did. The table is monotone: costs only decrease.
func (p pathTable) optimize(s State) bool {
	k := key(s.I, s.V)
	if cur, ok := p[k]; ok && cur.Cost <= s.Cost {
		return false
	}
	p[k] = s
	return true
}

// prevEdgeTable records, per (i, v), the incoming edge chosen when the path
// table last improved. It is only written under a successful optimize.
type prevEdgeTable map[stateKey]graph.Edge

func (pe prevEdgeTable) set(i, v int, e graph.Edge) { pe[key(i, v)] = e }

func (pe prevEdgeTable) get(i, v int) (graph.Edge, bool) {
	e, ok := pe[key(i, v)]
	return e, ok
}

// visitedSet marks product-graph vertices that have been expanded once.
// With a consistent heuristic re-pops are rare; the mask is kept as a
// safety net and to keep seed-boundary re-expansions bounded.
type visitedSet map[stateKey]bool

func (vis visitedSet) has(i, v int) bool { return vis[key(i, v)] }
func (vis visitedSet) mark(i, v int)     { vis[key(i, v)] = true }
