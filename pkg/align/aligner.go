package align

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/seqwork/grafalign/pkg/graph"
)

// Status classifies the outcome of one readmap. None of these are errors.
type Status uint8

const (
	// StatusNone means no final state was reached.
	StatusNone Status = iota
	// StatusUnique means a single optimal alignment was found.
	StatusUnique
	// StatusAmbiguous means two or more co-optimal alignments exist, or the
	// cost cap stopped the search first.
	StatusAmbiguous
)

func (s Status) String() string {
	switch s {
	case StatusUnique:
		return "unique"
	case StatusAmbiguous:
		return "ambiguous"
	}
	return "no-alignment"
}

// Result is the outcome of aligning one read.
type Result struct {
	Read *Read
	// Finals holds up to kBest co-optimal final states, best first.
	Finals []State
	// Path is the reconstructed edge path of the best final, from the
	// supersource to the read end.
	Path   []graph.Edge
	Status Status
	// Cost is the recorded optimum, or 0 when the cost cap fired.
	Cost Cost
}

// Params configures an Aligner.
type Params struct {
	Costs        Costs
	GreedyMatch  bool
	MaxAlignCost Cost // soft cap; exceeding it ends the search
}

// Aligner runs A* over the product graph for one read at a time. The graph
// and heuristic are shared read-only; the per-read stores are owned by the
// Aligner, so concurrent reads need one Aligner each.
type Aligner struct {
	g      *graph.Graph
	heur   Heuristic
	params Params
	logger *log.Logger

	stats Stats

	edgeBuf []graph.Edge // reused across expansions
}

// NewAligner creates an aligner over g guided by heur. A nil logger
// disables tracing.
func NewAligner(g *graph.Graph, heur Heuristic, params Params, logger *log.Logger) *Aligner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if params.MaxAlignCost <= 0 {
		params.MaxAlignCost = Inf
	}
	return &Aligner{g: g, heur: heur, params: params, logger: logger}
}

// Stats returns the counters accumulated over all Readmap calls so far.
func (a *Aligner) Stats() *Stats { return &a.stats }

// Heuristic returns the heuristic the aligner was built with.
func (a *Aligner) Heuristic() Heuristic { return a.heur }

// Readmap aligns r and returns up to kBest co-optimal final states with the
// traceback of the best. It fails softly: a Result with StatusNone or
// StatusAmbiguous and no finals means no alignment was produced.
//
// The read must be validated ([ValidateRead]) and the graph must have a
// supersource; both are programming errors if violated, and panic.
func (a *Aligner) Readmap(r *Read, kBest int) Result {
	if kBest < 1 {
		panic("align: kBest must be >= 1")
	}
	if !a.g.HasSupersource() {
		panic("align: graph has no supersource")
	}
	if err := ValidateRead(r); err != nil {
		panic("align: " + err.Error())
	}
	start := time.Now()
	defer func() { a.stats.Timers.Total += time.Since(start) }()

	a.logger.Debug("aligning read", "comment", r.Comment, "len", r.Len())

	p := make(pathTable)
	pe := make(prevEdgeTable)
	vis := make(visitedSet)
	var q frontier

	a.heur.BeforeEveryAlignment(r)
	defer a.heur.AfterEveryAlignment()

	res := Result{Read: r}

	{
		st := State{Cost: 0, I: 0, V: 0, PrevI: -1, PrevV: -1}
		q.push(0, st)
		p.optimize(st)
	}

	capped := false
	coOptimal := false
	for !q.empty() {
		it := q.pop()
		curr := it.st

		if a.g.NodeInTrie(curr.V) {
			a.stats.PoppedTrie++
		} else {
			a.stats.PoppedRef++
		}

		if vis.has(curr.I, curr.V) {
			// Only reachable when the heuristic was momentarily
			// inconsistent (seed boundaries near the trie).
			a.stats.RepeatedVisits++
			continue
		}
		vis.mark(curr.I, curr.V)

		if len(res.Finals) > 0 && !EQ(res.Finals[0].Cost, it.f) {
			break
		}

		if it.f > a.params.MaxAlignCost {
			a.stats.Ambiguous++
			res.Status = StatusAmbiguous
			res.Cost = 0
			capped = true
			break
		}

		if curr.I == r.Len() {
			if len(res.Finals) == kBest {
				// One co-optimal final beyond kBest: the read is
				// ambiguous, and the extra final is not kept.
				coOptimal = true
				break
			}
			final := p.get(curr.I, curr.V)
			a.logger.Debug("target reached", "i", curr.I, "v", curr.V, "cost", float64(final.Cost))
			res.Finals = append(res.Finals, final)
			res.Cost = final.Cost
			if len(res.Finals) >= kBest && kBest > 1 {
				break
			}
			continue
		}

		if a.params.GreedyMatch {
			curr = a.proceedIdentity(p, pe, curr, r)
		}

		a.edgeBuf = a.g.MatchingEdges(curr.V, r.Seq[curr.I], a.edgeBuf[:0])
		for _, e := range a.edgeBuf {
			a.tryEdge(curr, e, p, pe, &q)
		}
		a.stats.ExploredStates++
	}

	if !capped {
		switch {
		case len(res.Finals) == 0:
			res.Status = StatusNone
			a.stats.NoAlignment++
		case len(res.Finals) == 1 && !coOptimal:
			res.Status = StatusUnique
			a.stats.Unique++
		default:
			res.Status = StatusAmbiguous
			a.stats.Ambiguous++
		}
	}
	a.stats.ReadCosts = append(a.stats.ReadCosts, float64(res.Cost))

	if len(res.Finals) > 0 {
		res.Path = a.traceback(p, pe, res.Finals[0])
	}
	return res
}

// tryEdge relaxes e out of curr: it computes the successor state, gates it
// through the path table, and pushes it with f = g + h on success.
func (a *Aligner) tryEdge(curr State, e graph.Edge, p pathTable, pe prevEdgeTable, q *frontier) {
	iNext := curr.I
	if e.Label != graph.Eps {
		iNext++
	}
	g := p.get(curr.I, curr.V).Cost + a.params.Costs.EdgeCost(e)

	next := State{Cost: g, I: iNext, V: e.To, PrevI: curr.I, PrevV: curr.V}
	if !p.optimize(next) {
		return
	}
	pe.set(iNext, e.To, e)

	t := time.Now()
	h := a.heur.H(next)
	a.stats.Timers.AStar += time.Since(t)

	q.push(g+h, next)
}

// proceedIdentity greedily fast-forwards curr along a chain of nodes whose
// only stored out-edge is an Orig edge matching the next read character.
// The extension is a pure optimization: every
// advanced state also goes through the path table, so disabling it cannot
// change the optimum.
func (a *Aligner) proceedIdentity(p pathTable, pe prevEdgeTable, curr State, r *Read) State {
	t := time.Now()
	defer func() { a.stats.Timers.FastForward += time.Since(t) }()

	for {
		n, e := a.g.NumOutOrigEdges(curr.V)
		if n != 1 || len(a.g.Out(curr.V)) != 1 || curr.I >= r.Len()-1 || e.Label != r.Seq[curr.I] {
			return curr
		}
		a.stats.GreedyMatched++
		next := State{
			Cost:  curr.Cost + a.params.Costs.EdgeCost(e),
			I:     curr.I + 1,
			V:     e.To,
			PrevI: curr.I,
			PrevV: curr.V,
		}
		if !p.optimize(next) {
			return curr
		}
		pe.set(next.I, next.V, e)
		curr = next
		a.stats.ExploredStates++
	}
}

// traceback reconstructs the edge path of final by walking the prev-edge
// store back to the supersource.
func (a *Aligner) traceback(p pathTable, pe prevEdgeTable, final State) []graph.Edge {
	var rev []graph.Edge
	i, v := final.I, final.V
	for {
		st := p.get(i, v)
		if st.PrevI < 0 {
			break
		}
		e, ok := pe.get(i, v)
		if !ok {
			break
		}
		rev = append(rev, e)
		i, v = st.PrevI, st.PrevV
	}
	path := make([]graph.Edge, 0, len(rev))
	for k := len(rev) - 1; k >= 0; k-- {
		path = append(path, rev[k])
	}
	return path
}

// PathSpelling returns the nucleotides consumed along path, i.e. the read
// as it was matched (substituted characters included).
func PathSpelling(path []graph.Edge) string {
	var b []byte
	for _, e := range path {
		if e.Label != graph.Eps {
			b = append(b, e.Label)
		}
	}
	return string(b)
}

// PathNodes returns the graph nodes visited by path, starting after the
// supersource.
func PathNodes(path []graph.Edge) []int {
	nodes := make([]int, 0, len(path))
	for _, e := range path {
		nodes = append(nodes, e.To)
	}
	return nodes
}
