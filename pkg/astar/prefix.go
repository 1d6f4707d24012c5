package astar

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/seqwork/grafalign/pkg/align"
	"github.com/seqwork/grafalign/pkg/graph"
)

// memoShards is the number of lock shards in the prefix memo table. A
// single lock would serialize every heuristic query across workers.
const memoShards = 64

// PrefixParams configures a [Prefix] heuristic.
type PrefixParams struct {
	// MaxPrefixLen caps the length of the upcoming read window.
	MaxPrefixLen int
	// MaxPrefixCost caps the returned bound and prunes the lookahead DFS.
	MaxPrefixCost align.Cost
	// CompressVertices collapses vertices with identical outgoing spelling
	// sets into one memo entry.
	CompressVertices bool
}

// memoShard is one lock-striped slice of the memo table.
type memoShard struct {
	mu sync.Mutex
	m  map[uint64]align.Cost
}

// prefixIndex is the shared, read-mostly core of the prefix heuristic: the
// vertex equivalence classes built at construction time and the memo table
// that grows monotonically over the program run. One index serves any
// number of [Prefix] views concurrently.
type prefixIndex struct {
	g      *graph.Graph
	costs  align.Costs
	params PrefixParams

	prevGroupSum []uint64 // window length -> count of strictly shorter windows
	kMaxStrHash  uint64

	vertex2class   []int
	class2repr     []int
	class2boundary []int
	classes        int
	compressable   int

	shards [memoShards]memoShard

	lookups atomic.Int64
	misses  atomic.Int64
}

// Prefix is the memoized prefix-lookahead heuristic. For a state <i, v> it
// returns the minimum edit cost between the upcoming read window and any
// equally long path leaving v, capped at MaxPrefixCost.
//
// The memo and the equivalence classes are shared between [Prefix.Clone]
// views; the current read is per-view. Give every worker its own view.
type Prefix struct {
	ix *prefixIndex
	r  *align.Read
}

// NewPrefix creates a prefix heuristic over g and precomputes the vertex
// equivalence classes. The graph must be fully built before construction.
func NewPrefix(g *graph.Graph, costs align.Costs, params PrefixParams) *Prefix {
	if params.MaxPrefixLen < 1 {
		panic("astar: max prefix length must be >= 1")
	}
	if params.MaxPrefixCost <= 0 {
		panic("astar: max prefix cost must be positive")
	}
	ix := &prefixIndex{g: g, costs: costs, params: params}
	ix.hashPrecomp()
	ix.buildClasses()
	for i := range ix.shards {
		ix.shards[i].m = make(map[uint64]align.Cost)
	}
	return &Prefix{ix: ix}
}

// Clone returns a new view sharing this heuristic's memo and classes.
func (p *Prefix) Clone() *Prefix { return &Prefix{ix: p.ix} }

// BeforeEveryAlignment stores the read the windows are cut from.
func (p *Prefix) BeforeEveryAlignment(r *align.Read) { p.r = r }

// AfterEveryAlignment implements [align.Heuristic]. The memo deliberately
// survives between reads.
func (p *Prefix) AfterEveryAlignment() { p.r = nil }

// H returns the capped minimum edit cost of aligning the upcoming window
// against any path leaving st.V.
func (p *Prefix) H(st align.State) align.Cost {
	end := st.I + p.ix.params.MaxPrefixLen
	if end > p.r.Len() {
		end = p.r.Len()
	}
	w := p.r.Seq[st.I:end]
	if len(w) == 0 {
		return 0
	}
	return p.ix.fromPos(st.V, w)
}

// PrintParams implements [align.Heuristic].
func (p *Prefix) PrintParams(w io.Writer) {
	ix := p.ix
	fmt.Fprintf(w, "                 Cost cap: %g\n", float64(ix.params.MaxPrefixCost))
	fmt.Fprintf(w, " Upcoming seq. length cap: %d\n", ix.params.MaxPrefixLen)
	fmt.Fprintf(w, "     Vertex equiv classes: %t\n", ix.params.CompressVertices)
	fmt.Fprintf(w, "    Compressable vertices: %d (%.1f%%)\n",
		ix.compressable, 100*float64(ix.compressable)/float64(ix.g.NumNodes()))
}

// PrintStats implements [align.Heuristic].
func (p *Prefix) PrintStats(w io.Writer) {
	ix := p.ix
	entries := 0
	for i := range ix.shards {
		ix.shards[i].mu.Lock()
		entries += len(ix.shards[i].m)
		ix.shards[i].mu.Unlock()
	}
	lookups := ix.lookups.Load()
	if lookups == 0 {
		lookups = 1
	}
	fmt.Fprintf(w, "       Memo entries: %d\n", entries)
	fmt.Fprintf(w, " Memoization misses: %.1f%%\n", 100*float64(ix.misses.Load())/float64(lookups))
}

// hashPrecomp fills prevGroupSum so that windows of different lengths hash
// into disjoint ranges: hash(w) lands in [0, kMaxStrHash).
func (ix *prefixIndex) hashPrecomp() {
	fourPower := uint64(1)
	ix.prevGroupSum = make([]uint64, ix.params.MaxPrefixLen+1)
	for i := 1; i <= ix.params.MaxPrefixLen; i++ {
		ix.prevGroupSum[i] = ix.prevGroupSum[i-1] + fourPower
		fourPower <<= 2
	}
	ix.kMaxStrHash = ix.prevGroupSum[ix.params.MaxPrefixLen] + fourPower
}

// hashStr treats w as a base-4 integer and offsets it by its length group.
func (ix *prefixIndex) hashStr(w []byte) uint64 {
	h := uint64(0)
	for _, c := range w {
		h = h<<2 + uint64(nuclNum(c))
	}
	return h + ix.prevGroupSum[len(w)]
}

func nuclNum(c byte) int {
	switch c {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	}
	panic(fmt.Sprintf("astar: non-nucleotide %q", c))
}

// buildClasses assigns every vertex to an equivalence class. With
// compression enabled, vertices whose futures are a single deterministic
// string of MaxPrefixLen characters are grouped by that string; everything
// else keeps its own class.
func (ix *prefixIndex) buildClasses() {
	n := ix.g.NumNodes()
	ix.vertex2class = make([]int, n)
	if !ix.params.CompressVertices {
		ix.class2repr = make([]int, n)
		ix.class2boundary = make([]int, n)
		for v := 0; v < n; v++ {
			ix.vertex2class[v] = v
			ix.class2repr[v] = v
			ix.class2boundary[v] = -1
		}
		ix.classes = n
		return
	}

	byString := make(map[string]int)
	pref := make([]byte, 0, ix.params.MaxPrefixLen)
	for v := 0; v < n; v++ {
		pref = pref[:0]
		boundary, ok := ix.linearTail(v, &pref)
		if !ok {
			ix.vertex2class[v] = ix.classes
			ix.class2repr = append(ix.class2repr, v)
			ix.class2boundary = append(ix.class2boundary, -1)
			ix.classes++
			continue
		}
		cls, seen := byString[string(pref)]
		if !seen {
			cls = ix.classes
			byString[string(pref)] = cls
			ix.class2repr = append(ix.class2repr, v)
			ix.class2boundary = append(ix.class2boundary, boundary)
			ix.classes++
		} else {
			ix.compressable++
		}
		ix.vertex2class[v] = cls
	}
}

// linearTail reports whether v starts a unique Orig chain of MaxPrefixLen
// characters. On success pref holds the spelled string and the returned
// node is the chain's boundary.
func (ix *prefixIndex) linearTail(v int, pref *[]byte) (int, bool) {
	u := v
	for range ix.params.MaxPrefixLen {
		n, e := ix.g.NumOutOrigEdges(u)
		if n != 1 || len(ix.g.Out(u)) != 1 {
			return -1, false
		}
		*pref = append(*pref, e.Label)
		u = e.To
	}
	return u, true
}

// fromPos resolves v to its class representative and serves the bound from
// the memo, computing it on miss.
func (ix *prefixIndex) fromPos(v int, w []byte) align.Cost {
	cls := ix.vertex2class[v]
	key := uint64(cls)*ix.kMaxStrHash + ix.hashStr(w)
	shard := &ix.shards[key%memoShards]

	ix.lookups.Add(1)
	shard.mu.Lock()
	if c, ok := shard.m[key]; ok {
		shard.mu.Unlock()
		return c
	}
	shard.mu.Unlock()

	ix.misses.Add(1)
	res := ix.params.MaxPrefixCost
	ix.compute(ix.class2repr[cls], w, 0, 0, &res)

	shard.mu.Lock()
	shard.m[key] = res
	shard.mu.Unlock()
	return res
}

// compute runs the bounded lookahead DFS: minimize the edit cost of w[i:]
// over all paths leaving u, pruning any branch that cannot beat res.
// Termination relies on edit costs being positive.
func (ix *prefixIndex) compute(u int, w []byte, i int, costSoFar align.Cost, res *align.Cost) {
	if costSoFar >= *res {
		return
	}
	if i == len(w) {
		*res = costSoFar
		return
	}
	for _, e := range ix.g.MatchingEdges(u, w[i], nil) {
		iNext := i
		if e.Label != graph.Eps {
			iNext++
		}
		ix.compute(e.To, w, iNext, costSoFar+ix.costs.EdgeCost(e), res)
	}
}
