package astar_test

import (
	"strings"
	"testing"

	"github.com/seqwork/grafalign/pkg/align"
	"github.com/seqwork/grafalign/pkg/astar"
	"github.com/seqwork/grafalign/pkg/graph"
)

// fanoutChain builds a linear reference spelling s with a supersource
// fan-out, the entry structure the seed heuristic indexes against.
func fanoutChain(t *testing.T, s string) *graph.Graph {
	t.Helper()
	g := graph.New(len(s) + 1)
	for i := 0; i < len(s); i++ {
		if err := g.AddEdge(i, i+1, s[i], graph.Orig); err != nil {
			t.Fatalf("AddEdge(%d): %v", i, err)
		}
	}
	g.AttachFanout()
	return g
}

func costs() align.Costs { return align.Costs{Match: 0, Subst: 1, Ins: 5, Del: 5} }

func TestSeedsExactMatchZeroBound(t *testing.T) {
	// Read of length 3*seedLen matching the graph exactly: the bound at
	// the start state must be zero.
	const seedLen = 4
	ref := "ACGTTGCAACGT"
	g := fanoutChain(t, ref)
	h := astar.NewSeeds(g, costs(), astar.SeedParams{SeedLen: seedLen, MaxSeedErrors: 1, ShiftsAllowed: 1})

	r := &align.Read{Comment: "exact", Seq: []byte(ref)}
	h.BeforeEveryAlignment(r)
	if got := h.H(align.State{I: 0, V: 0, PrevI: -1, PrevV: -1}); !align.EQ(got, 0) {
		t.Errorf("H(<0,0>) = %g, want 0", float64(got))
	}
	// AfterEveryAlignment panics if any mask survives teardown.
	h.AfterEveryAlignment()
}

func TestSeedsUnmatchableSeedRaisesBound(t *testing.T) {
	const seedLen = 4
	g := fanoutChain(t, "ACGTACGTACGT")
	h := astar.NewSeeds(g, costs(), astar.SeedParams{SeedLen: seedLen, MaxSeedErrors: 0, ShiftsAllowed: 0})

	// The last seed (TTTT) occurs nowhere; with a zero error budget it
	// cannot be credited, so the bound must charge at least one edit.
	r := &align.Read{Comment: "tail", Seq: []byte("ACGTACGTTTTT")}
	h.BeforeEveryAlignment(r)
	defer h.AfterEveryAlignment()

	got := h.H(align.State{I: 0, V: 0, PrevI: -1, PrevV: -1})
	if got < costs().MinMismatchCost() {
		t.Errorf("H(<0,0>) = %g, want >= %g", float64(got), float64(costs().MinMismatchCost()))
	}
}

func TestSeedsTeardownIsRepeatable(t *testing.T) {
	g := fanoutChain(t, "ACGTACGT")
	h := astar.NewSeeds(g, costs(), astar.SeedParams{SeedLen: 4, MaxSeedErrors: 1, ShiftsAllowed: 1})

	for i := 0; i < 3; i++ {
		r := &align.Read{Comment: "r", Seq: []byte("ACGTACGT")}
		h.BeforeEveryAlignment(r)
		_ = h.H(align.State{I: 2, V: 3, PrevI: -1, PrevV: -1})
		h.AfterEveryAlignment()
	}
}

func TestSeedsAdmissibleOnOptimalPath(t *testing.T) {
	// For every state along the exact-match path the bound must not
	// exceed the true remaining cost (zero).
	ref := "ACGTTGCAACGTTGCA"
	g := fanoutChain(t, ref)
	h := astar.NewSeeds(g, costs(), astar.SeedParams{SeedLen: 4, MaxSeedErrors: 1, ShiftsAllowed: 1})

	r := &align.Read{Comment: "exact", Seq: []byte(ref)}
	h.BeforeEveryAlignment(r)
	defer h.AfterEveryAlignment()

	for i := 0; i <= len(ref); i++ {
		// After i characters the exact path sits at node i.
		if got := h.H(align.State{I: i, V: i, PrevI: -1, PrevV: -1}); !align.EQ(got, 0) {
			t.Errorf("H(<%d,%d>) = %g, want 0 on the optimal path", i, i, float64(got))
		}
	}
}

func TestSeedsPrintParams(t *testing.T) {
	g := fanoutChain(t, "ACGT")
	h := astar.NewSeeds(g, costs(), astar.SeedParams{SeedLen: 2, MaxSeedErrors: 1, ShiftsAllowed: 1})

	var sb strings.Builder
	h.PrintParams(&sb)
	if !strings.Contains(sb.String(), "seed length: 2") {
		t.Errorf("PrintParams output missing seed length:\n%s", sb.String())
	}
}
