package astar

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/seqwork/grafalign/pkg/align"
	"github.com/seqwork/grafalign/pkg/graph"
)

// maxSeeds bounds the number of indexed seeds per read: one bit each in a
// uint64 mask, with the top bit kept free. Seeds beyond the cap are simply
// not credited, which keeps the bound admissible for very long reads.
const maxSeeds = 63

// SeedParams configures a [Seeds] heuristic.
type SeedParams struct {
	// SeedLen is the seed length in bp.
	SeedLen int
	// MaxSeedErrors is the per-seed edit budget E; a seed is looked up at
	// every error level in [0, E].
	MaxSeedErrors int
	// ShiftsAllowed tolerates entering the trie slightly off its depth
	// during backward marking (deletions in the first trie-depth
	// nucleotides).
	ShiftsAllowed int
}

// Seeds is the seed-index heuristic. Before each alignment the read is cut
// into non-overlapping seeds from its right end; every approximate seed
// occurrence in the graph marks one bit per node on each backward path to
// the supersource. A state's bound is then a popcount away: every seed
// ahead of the state that is not marked at its node forces at least one
// edit.
//
// The per-read mark tables are owned by the heuristic, so concurrent reads
// need one Seeds instance each.
type Seeds struct {
	g      *graph.Graph
	costs  align.Costs
	params SeedParams

	r *align.Read
	h [][]uint64 // h[errors][node]: bit p set => node on admissible path for seed p

	// per-read stats
	seeds           int
	seedMatches     int
	pathsConsidered int
	markedStates    int

	// cumulative stats
	readsTotal           int
	seedsTotal           int
	seedMatchesTotal     int
	pathsConsideredTotal int
	markedStatesTotal    int
	bestHeuristicSum     align.Cost
}

// NewSeeds creates a seed heuristic over g. The graph must be fully built
// (trie included) before the heuristic is constructed.
func NewSeeds(g *graph.Graph, costs align.Costs, params SeedParams) *Seeds {
	if params.SeedLen < 1 {
		panic("astar: seed length must be >= 1")
	}
	s := &Seeds{g: g, costs: costs, params: params}
	s.h = make([][]uint64, params.MaxSeedErrors+1)
	for e := range s.h {
		s.h[e] = make([]uint64, g.NumNodes())
	}
	return s
}

// BeforeEveryAlignment cuts r into seeds, locates their approximate
// occurrences and marks the backward paths.
func (s *Seeds) BeforeEveryAlignment(r *align.Read) {
	s.readsTotal++
	s.r = r
	s.seedMatches = 0
	s.pathsConsidered = 0
	s.markedStates = 0

	s.seeds = s.genSeedsAndUpdate(r, +1)

	s.seedsTotal += s.seeds
	s.seedMatchesTotal += s.seedMatches
	s.pathsConsideredTotal += s.pathsConsidered
	s.markedStatesTotal += s.markedStates
	s.bestHeuristicSum += s.H(align.State{I: 0, V: 0, PrevI: -1, PrevV: -1})
}

// H returns the lower bound for st in O(max seed errors) time. Each seed
// still ahead of st.I is credited once, at its lowest matching error
// level; every uncredited seed forces at least one edit.
func (s *Seeds) H(st align.State) align.Cost {
	allSeedsToEnd := (s.r.Len() - st.I - 1) / s.params.SeedLen
	if allSeedsToEnd > maxSeeds {
		allSeedsToEnd = maxSeeds
	}

	e := s.params.MaxSeedErrors
	totalErrors := (e + 1) * allSeedsToEnd
	notUsed := uint64(1)<<uint(allSeedsToEnd) - 1
	for errors := 0; errors <= e; errors++ {
		remaining := s.h[errors][st.V] & notUsed
		matched := bits.OnesCount64(remaining)
		notUsed &^= remaining
		totalErrors -= matched * (e + 1 - errors)
	}

	return align.Cost(totalErrors) * s.costs.MinMismatchCost()
}

// AfterEveryAlignment replays the marking with opposite sign, restoring
// every mask to zero, and verifies it did.
func (s *Seeds) AfterEveryAlignment() {
	s.genSeedsAndUpdate(s.r, -1)
	if err := s.checkClean(); err != nil {
		panic(err)
	}
	s.r = nil
}

// checkClean returns an error if any mask survived teardown.
func (s *Seeds) checkClean() error {
	for e := range s.h {
		for v, m := range s.h[e] {
			if m != 0 {
				return fmt.Errorf("astar: seed mask not cleared at errors=%d node=%d", e, v)
			}
		}
	}
	return nil
}

// PrintParams implements [align.Heuristic].
func (s *Seeds) PrintParams(w io.Writer) {
	fmt.Fprintf(w, "      seed length: %d bp\n", s.params.SeedLen)
	fmt.Fprintf(w, "  max seed errors: %d\n", s.params.MaxSeedErrors)
	fmt.Fprintf(w, "   shifts allowed: %d\n", s.params.ShiftsAllowed)
}

// PrintStats implements [align.Heuristic].
func (s *Seeds) PrintStats(w io.Writer) {
	reads := s.readsTotal
	if reads == 0 {
		reads = 1
	}
	fmt.Fprintf(w, "              Seeds: %d\n", s.seedsTotal)
	fmt.Fprintf(w, "       Seed matches: %d (%.1f per read)\n",
		s.seedMatchesTotal, float64(s.seedMatchesTotal)/float64(reads))
	fmt.Fprintf(w, "   Paths considered: %d\n", s.pathsConsideredTotal)
	fmt.Fprintf(w, " Graph nodes marked: %d\n", s.markedStatesTotal)
	fmt.Fprintf(w, "Best heuristic avg: %.2f\n", float64(s.bestHeuristicSum)/float64(reads))
}

// genSeedsAndUpdate cuts r into seeds of SeedLen from the right end and
// applies dval (+1 marks, -1 unmarks) for every approximate occurrence.
// Seed 0 is the rightmost. Returns the number of seeds processed.
func (s *Seeds) genSeedsAndUpdate(r *align.Read, dval int) int {
	seeds := 0
	for i := r.Len() - s.params.SeedLen; i >= 0 && seeds < maxSeeds; i -= s.params.SeedLen {
		s.matchSeedAndUpdate(r, seeds, i, i, 0, dval, s.params.MaxSeedErrors)
		seeds++
	}
	return seeds
}

// matchSeedAndUpdate walks seed p (read[start, start+SeedLen)) forward from
// the supersource through trie and reference with the remaining error
// budget, and triggers backward marking at every full-length occurrence.
func (s *Seeds) matchSeedAndUpdate(r *align.Read, p, start, i, v, dval, remainingErrors int) {
	if i < start+s.params.SeedLen {
		for _, e := range s.g.MatchingEdges(v, r.Seq[i], nil) {
			newI := i
			if e.Label != graph.Eps {
				newI++
			}
			newErrors := remainingErrors
			switch e.Type {
			case graph.Sub, graph.Ins, graph.Del:
				newErrors--
			}
			if newErrors >= 0 {
				s.matchSeedAndUpdate(r, p, start, newI, e.To, dval, newErrors)
			}
		}
		return
	}

	if s.g.NodeInTrie(v) {
		// The seed ran out before leaving the trie; no reference
		// occurrence to mark.
		return
	}
	s.updatePathBackwards(p, i, v, dval, s.params.ShiftsAllowed, s.params.MaxSeedErrors-remainingErrors)
	s.seedMatches++
}

// updatePathBackwards applies dval at v for seed p and recurses along
// reverse stored edges toward the supersource. A step is permitted when we
// are already inside the trie, when the remaining length is within the
// shift budget of the trie depth (the transition window into the trie), or
// while still strictly in the reference region. Returns whether the
// supersource was reached at least once.
func (s *Seeds) updatePathBackwards(p, i, v, dval, shiftsRemaining, errors int) bool {
	bit := uint64(1) << uint(p)
	if dval > 0 {
		if s.h[errors][v]&bit == 0 {
			s.markedStates++
			s.h[errors][v] |= bit
		}
	} else {
		s.h[errors][v] &^= bit
	}

	if v == 0 {
		s.pathsConsidered++
		return true
	}

	depth := s.g.TrieDepth()
	reached := false
	for _, e := range s.g.RevEdges(v) {
		u := e.To
		if e.Label == graph.Eps {
			// Supersource fan-out jump: the alignment may start right
			// here, so the path is complete without consuming length.
			if s.updatePathBackwards(p, i, u, dval, shiftsRemaining, errors) {
				reached = true
			}
			continue
		}
		if s.g.NodeInTrie(v) ||
			abs(i-1-depth) <= shiftsRemaining ||
			(i-1 > depth && !s.g.NodeInTrie(u)) {
			if s.updatePathBackwards(p, i-1, u, dval, shiftsRemaining, errors) {
				reached = true
			}
		}
	}
	return reached
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
