package align

import (
	"fmt"
	"io"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Timers accumulates wall-clock time spent in the major phases of a
// readmap call.
type Timers struct {
	Total       time.Duration
	AStar       time.Duration // time spent inside Heuristic.H
	FastForward time.Duration
}

// Add merges o into t.
func (t *Timers) Add(o Timers) {
	t.Total += o.Total
	t.AStar += o.AStar
	t.FastForward += o.FastForward
}

// Stats collects the counters observed by callers. One Stats value is
// owned by one Aligner and is not safe for concurrent writes; the Driver
// merges per-worker stats after the run.
type Stats struct {
	ExploredStates int64
	PoppedTrie     int64
	PoppedRef      int64
	RepeatedVisits int64
	GreedyMatched  int64

	Unique      int64
	Ambiguous   int64
	NoAlignment int64

	// ReadCosts holds the recorded per-read optimum (0 for capped reads),
	// in completion order.
	ReadCosts []float64

	Timers Timers
}

// Add merges o into s.
func (s *Stats) Add(o *Stats) {
	s.ExploredStates += o.ExploredStates
	s.PoppedTrie += o.PoppedTrie
	s.PoppedRef += o.PoppedRef
	s.RepeatedVisits += o.RepeatedVisits
	s.GreedyMatched += o.GreedyMatched
	s.Unique += o.Unique
	s.Ambiguous += o.Ambiguous
	s.NoAlignment += o.NoAlignment
	s.ReadCosts = append(s.ReadCosts, o.ReadCosts...)
	s.Timers.Add(o.Timers)
}

// Reads returns the number of reads the stats cover.
func (s *Stats) Reads() int { return len(s.ReadCosts) }

// MeanCost returns the mean recorded alignment cost.
func (s *Stats) MeanCost() float64 {
	if len(s.ReadCosts) == 0 {
		return 0
	}
	return stat.Mean(s.ReadCosts, nil)
}

// MedianCost returns the median recorded alignment cost.
func (s *Stats) MedianCost() float64 {
	if len(s.ReadCosts) == 0 {
		return 0
	}
	costs := slices.Clone(s.ReadCosts)
	slices.Sort(costs)
	return stat.Quantile(0.5, stat.Empirical, costs, nil)
}

// Print writes a human-readable stats report.
func (s *Stats) Print(w io.Writer) {
	fmt.Fprintf(w, "            Aligned reads: %d\n", s.Reads())
	fmt.Fprintf(w, "          Explored states: %d\n", s.ExploredStates)
	fmt.Fprintf(w, "  Popped states trie/ref: %d/%d\n", s.PoppedTrie, s.PoppedRef)
	fmt.Fprintf(w, "          Repeated visits: %d\n", s.RepeatedVisits)
	fmt.Fprintf(w, "   Greedy matched states: %d\n", s.GreedyMatched)
	fmt.Fprintf(w, "  Unique/ambiguous/none: %d/%d/%d\n", s.Unique, s.Ambiguous, s.NoAlignment)
	fmt.Fprintf(w, "      Mean/median cost: %.2f/%.2f\n", s.MeanCost(), s.MedianCost())
	fmt.Fprintf(w, "      Time total/astar/ff: %s/%s/%s\n",
		s.Timers.Total.Round(time.Microsecond),
		s.Timers.AStar.Round(time.Microsecond),
		s.Timers.FastForward.Round(time.Microsecond))
}
