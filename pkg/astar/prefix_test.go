package astar_test

import (
	"strings"
	"testing"

	"github.com/seqwork/grafalign/pkg/align"
	"github.com/seqwork/grafalign/pkg/astar"
)

func TestPrefixExactWindowZeroBound(t *testing.T) {
	ref := "ACGTTGCA"
	g := fanoutChain(t, ref)
	h := astar.NewPrefix(g, costs(), astar.PrefixParams{MaxPrefixLen: 4, MaxPrefixCost: 5})

	r := &align.Read{Comment: "exact", Seq: []byte(ref)}
	h.BeforeEveryAlignment(r)
	defer h.AfterEveryAlignment()

	// From node i, the upcoming window read[i:i+4] spells exactly the
	// chain ahead, so the bound is zero.
	for i := 0; i+4 <= len(ref); i++ {
		if got := h.H(align.State{I: i, V: i, PrevI: -1, PrevV: -1}); !align.EQ(got, 0) {
			t.Errorf("H(<%d,%d>) = %g, want 0", i, i, float64(got))
		}
	}
}

func TestPrefixMismatchCharged(t *testing.T) {
	g := fanoutChain(t, "AAAA")
	h := astar.NewPrefix(g, costs(), astar.PrefixParams{MaxPrefixLen: 2, MaxPrefixCost: 10})

	r := &align.Read{Comment: "r", Seq: []byte("CA")}
	h.BeforeEveryAlignment(r)
	defer h.AfterEveryAlignment()

	// Window "CA" from node 0: best is one substitution.
	got := h.H(align.State{I: 0, V: 0, PrevI: -1, PrevV: -1})
	if !align.EQ(got, 1) {
		t.Errorf("H = %g, want 1", float64(got))
	}
}

func TestPrefixRespectsCostCap(t *testing.T) {
	g := fanoutChain(t, "AAAAAAAA")
	cap := align.Cost(2)
	h := astar.NewPrefix(g, costs(), astar.PrefixParams{MaxPrefixLen: 6, MaxPrefixCost: cap})

	r := &align.Read{Comment: "r", Seq: []byte("CCCCCC")}
	h.BeforeEveryAlignment(r)
	defer h.AfterEveryAlignment()

	// Six mismatches cost 6, but the bound is capped.
	got := h.H(align.State{I: 0, V: 1, PrevI: -1, PrevV: -1})
	if got > cap || !align.EQ(got, cap) {
		t.Errorf("H = %g, want capped at %g", float64(got), float64(cap))
	}
}

func TestPrefixShortTailWindow(t *testing.T) {
	ref := "ACGT"
	g := fanoutChain(t, ref)
	h := astar.NewPrefix(g, costs(), astar.PrefixParams{MaxPrefixLen: 8, MaxPrefixCost: 5})

	r := &align.Read{Comment: "r", Seq: []byte(ref)}
	h.BeforeEveryAlignment(r)
	defer h.AfterEveryAlignment()

	// Near the read end the window shrinks; at the end it is empty.
	if got := h.H(align.State{I: 2, V: 2, PrevI: -1, PrevV: -1}); !align.EQ(got, 0) {
		t.Errorf("H(<2,2>) = %g, want 0", float64(got))
	}
	if got := h.H(align.State{I: 4, V: 4, PrevI: -1, PrevV: -1}); !align.EQ(got, 0) {
		t.Errorf("H at read end = %g, want 0", float64(got))
	}
}

func TestPrefixMemoSharedAcrossClones(t *testing.T) {
	ref := "ACGTACGTACGT"
	g := fanoutChain(t, ref)
	h := astar.NewPrefix(g, costs(), astar.PrefixParams{MaxPrefixLen: 4, MaxPrefixCost: 5})

	r := &align.Read{Comment: "r", Seq: []byte(ref)}
	h.BeforeEveryAlignment(r)
	first := h.H(align.State{I: 0, V: 0, PrevI: -1, PrevV: -1})
	h.AfterEveryAlignment()

	clone := h.Clone()
	clone.BeforeEveryAlignment(r)
	second := clone.H(align.State{I: 0, V: 0, PrevI: -1, PrevV: -1})
	clone.AfterEveryAlignment()

	if !align.EQ(first, second) {
		t.Errorf("clone disagrees: %g vs %g", float64(first), float64(second))
	}

	var sb strings.Builder
	h.PrintStats(&sb)
	if !strings.Contains(sb.String(), "Memo entries") {
		t.Errorf("PrintStats output missing memo size:\n%s", sb.String())
	}
}

func TestPrefixEquivalenceClasses(t *testing.T) {
	// A long homopolymer: interior vertices share the same AAAA future and
	// must collapse when compression is on.
	g := fanoutChain(t, "AAAAAAAAAA")
	with := astar.NewPrefix(g, costs(), astar.PrefixParams{MaxPrefixLen: 4, MaxPrefixCost: 5, CompressVertices: true})
	without := astar.NewPrefix(g, costs(), astar.PrefixParams{MaxPrefixLen: 4, MaxPrefixCost: 5})

	r := &align.Read{Comment: "r", Seq: []byte("AACA")}
	for _, h := range []*astar.Prefix{with, without} {
		h.BeforeEveryAlignment(r)
	}
	defer func() {
		for _, h := range []*astar.Prefix{with, without} {
			h.AfterEveryAlignment()
		}
	}()

	// Compression must never change the bound.
	for v := 1; v <= 6; v++ {
		a := with.H(align.State{I: 0, V: v, PrevI: -1, PrevV: -1})
		b := without.H(align.State{I: 0, V: v, PrevI: -1, PrevV: -1})
		if !align.EQ(a, b) {
			t.Errorf("node %d: compressed %g != uncompressed %g", v, float64(a), float64(b))
		}
	}

	var sb strings.Builder
	with.PrintParams(&sb)
	if !strings.Contains(sb.String(), "Compressable vertices") {
		t.Errorf("PrintParams output missing compression info:\n%s", sb.String())
	}
}
