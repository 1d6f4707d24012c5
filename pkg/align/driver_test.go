package align_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/seqwork/grafalign/pkg/align"
	"github.com/seqwork/grafalign/pkg/astar"
)

func TestDriverRun(t *testing.T) {
	g := chain(t, "ACGTACGTACGT")

	reads := make([]*align.Read, 20)
	for i := range reads {
		seq := "ACGTACGTACGT"
		if i%3 == 1 {
			seq = "ACGTTCGTACGT" // one substitution
		}
		reads[i] = newRead(fmt.Sprintf("r%d", i), seq)
	}

	d := &align.Driver{
		NewAligner: func() *align.Aligner {
			return align.NewAligner(g, astar.None{}, align.Params{Costs: unitCosts()}, nil)
		},
		Workers: 4,
	}
	report, err := d.Run(context.Background(), reads)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}

	if report.RunID == "" {
		t.Error("missing run id")
	}
	if len(report.Results) != len(reads) {
		t.Fatalf("results = %d, want %d", len(report.Results), len(reads))
	}
	for i, res := range report.Results {
		want := align.Cost(0)
		if i%3 == 1 {
			want = 1
		}
		if !align.EQ(res.Cost, want) {
			t.Errorf("read %d: cost = %g, want %g", i, float64(res.Cost), float64(want))
		}
		if res.Read != reads[i] {
			t.Errorf("read %d: results out of input order", i)
		}
	}
	if report.Stats.Reads() != len(reads) {
		t.Errorf("merged stats cover %d reads, want %d", report.Stats.Reads(), len(reads))
	}
}

func TestDriverCancelledContext(t *testing.T) {
	g := chain(t, "ACGT")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reads := []*align.Read{newRead("r", "ACGT")}
	d := &align.Driver{
		NewAligner: func() *align.Aligner {
			return align.NewAligner(g, astar.None{}, align.Params{Costs: unitCosts()}, nil)
		},
	}
	if _, err := d.Run(ctx, reads); err == nil {
		t.Fatal("Run() with cancelled context should report the context error")
	}
}
