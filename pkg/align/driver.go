package align

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Driver fans a batch of reads out over a fixed number of workers, one
// Aligner per worker. The graph and cost model are shared read-only; every
// worker gets its own per-read stores and, through the factory, its own
// heuristic state where the heuristic requires it.
type Driver struct {
	// NewAligner builds one worker's aligner. It is called once per worker
	// before any read is dispatched.
	NewAligner func() *Aligner

	Workers int
	KBest   int
	Logger  *log.Logger
}

// RunReport summarizes one Driver.Run call.
type RunReport struct {
	RunID   string
	Results []Result
	Stats   Stats
	Elapsed time.Duration
}

// Run aligns every read and returns per-read results in input order plus
// merged stats. Work in flight finishes after ctx is cancelled; reads not
// yet started are skipped and reported through the context error.
func (d *Driver) Run(ctx context.Context, reads []*Read) (*RunReport, error) {
	workers := d.Workers
	if workers < 1 {
		workers = 1
	}
	kBest := d.KBest
	if kBest < 1 {
		kBest = 1
	}
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}

	report := &RunReport{
		RunID:   uuid.NewString(),
		Results: make([]Result, len(reads)),
	}
	start := time.Now()
	logger.Debug("dispatching reads", "run", report.RunID, "reads", len(reads), "workers", workers)

	type job struct {
		idx int
		r   *Read
	}
	jobs := make(chan job)

	grp, gctx := errgroup.WithContext(ctx)
	aligners := make([]*Aligner, workers)
	for w := 0; w < workers; w++ {
		aligners[w] = d.NewAligner()
		a := aligners[w]
		grp.Go(func() error {
			for j := range jobs {
				report.Results[j.idx] = a.Readmap(j.r, kBest)
			}
			return nil
		})
	}

	grp.Go(func() error {
		defer close(jobs)
		for i, r := range reads {
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case jobs <- job{idx: i, r: r}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	err := grp.Wait()
	for _, a := range aligners {
		report.Stats.Add(a.Stats())
	}
	report.Elapsed = time.Since(start)
	logger.Info("alignment finished",
		"run", report.RunID,
		"reads", len(reads),
		"unique", report.Stats.Unique,
		"ambiguous", report.Stats.Ambiguous,
		"none", report.Stats.NoAlignment,
		"duration", report.Elapsed.Round(time.Millisecond))
	return report, err
}
