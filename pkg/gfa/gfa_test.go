package gfa

import (
	"strings"
	"testing"

	pkgerrors "github.com/seqwork/grafalign/pkg/errors"
	"github.com/seqwork/grafalign/pkg/graph"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantSegs  int
		wantLinks int
		wantErr   pkgerrors.Code
	}{
		{
			name:      "Minimal",
			input:     "S\t1\tACGT\nS\t2\tGGtt\nL\t1\t+\t2\t+\t*\n",
			wantSegs:  2,
			wantLinks: 1,
		},
		{
			name:     "SkipsOtherRecords",
			input:    "H\tVN:Z:1.0\nS\t1\tACGT\n# comment\n",
			wantSegs: 1,
		},
		{
			name:    "BadSegment",
			input:   "S\t1\n",
			wantErr: pkgerrors.ErrCodeInvalidGraph,
		},
		{
			name:    "NonNucleotide",
			input:   "S\t1\tACGN\n",
			wantErr: pkgerrors.ErrCodeInvalidGraph,
		},
		{
			name:    "LinkToUnknownSegment",
			input:   "S\t1\tACGT\nL\t1\t+\t9\t+\t*\n",
			wantErr: pkgerrors.ErrCodeInvalidGraph,
		},
		{
			name:    "BadStrand",
			input:   "S\t1\tAC\nS\t2\tGG\nL\t1\t?\t2\t+\t*\n",
			wantErr: pkgerrors.ErrCodeInvalidGraph,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				if !pkgerrors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want code %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() = %v", err)
			}
			if len(f.Segments) != tt.wantSegs {
				t.Errorf("segments = %d, want %d", len(f.Segments), tt.wantSegs)
			}
			if len(f.Links) != tt.wantLinks {
				t.Errorf("links = %d, want %d", len(f.Links), tt.wantLinks)
			}
		})
	}

	t.Run("UppercasesSequence", func(t *testing.T) {
		f, err := Parse(strings.NewReader("S\t1\tacgt\n"))
		if err != nil {
			t.Fatalf("Parse() = %v", err)
		}
		if f.Segments[0].Seq != "ACGT" {
			t.Errorf("seq = %s, want ACGT", f.Segments[0].Seq)
		}
	})
}

func TestReverseComplement(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"A", "T"},
		{"ACGT", "ACGT"},
		{"AAGG", "CCTT"},
		{"GATTACA", "TGTAATC"},
	}
	for _, tt := range tests {
		if got := ReverseComplement(tt.in); got != tt.want {
			t.Errorf("ReverseComplement(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	t.Run("AllForwardUnchanged", func(t *testing.T) {
		f, err := Parse(strings.NewReader("S\t1\tAC\nS\t2\tGG\nL\t1\t+\t2\t+\t*\n"))
		if err != nil {
			t.Fatal(err)
		}
		if err := Canonicalize(f); err != nil {
			t.Fatalf("Canonicalize() = %v", err)
		}
		if f.Segments[0].Seq != "AC" || f.Segments[1].Seq != "GG" {
			t.Errorf("forward segments were modified: %+v", f.Segments)
		}
	})

	t.Run("FlipsReverseSegment", func(t *testing.T) {
		// Segment 2 is registered on the minus strand and must come out
		// reverse-complemented.
		f, err := Parse(strings.NewReader("S\t1\tAC\nS\t2\tGGAA\nL\t1\t+\t2\t-\t*\n"))
		if err != nil {
			t.Fatal(err)
		}
		if err := Canonicalize(f); err != nil {
			t.Fatalf("Canonicalize() = %v", err)
		}
		if got, _ := f.Segment("2"); got.Seq != "TTCC" {
			t.Errorf("segment 2 = %s, want TTCC", got.Seq)
		}
	})

	t.Run("FlipPropagates", func(t *testing.T) {
		// 1+ -> 2-; a later link seeing 2 on the plus strand gets flipped
		// so both records agree.
		input := "S\t1\tAC\nS\t2\tGG\nS\t3\tTT\n" +
			"L\t1\t+\t2\t-\t*\n" +
			"L\t2\t+\t3\t+\t*\n"
		f, err := Parse(strings.NewReader(input))
		if err != nil {
			t.Fatal(err)
		}
		if err := Canonicalize(f); err != nil {
			t.Fatalf("Canonicalize() = %v", err)
		}
	})

	t.Run("Conflict", func(t *testing.T) {
		// Both endpoints registered; one agrees and one disagrees, which
		// no flip can fix.
		input := "S\t1\tAC\nS\t2\tGG\nS\t3\tTT\n" +
			"L\t1\t+\t2\t+\t*\n" +
			"L\t1\t+\t3\t+\t*\n" +
			"L\t1\t-\t2\t+\t*\n"
		f, err := Parse(strings.NewReader(input))
		if err != nil {
			t.Fatal(err)
		}
		err = Canonicalize(f)
		if !pkgerrors.Is(err, pkgerrors.ErrCodeStrandConflict) {
			t.Fatalf("Canonicalize() = %v, want STRAND_CONFLICT", err)
		}
	})
}

func TestWrite(t *testing.T) {
	f, err := Parse(strings.NewReader("S\tfoo\tAC\nS\tbar\tGG\nL\tfoo\t+\tbar\t+\t*\n"))
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := f.Write(&sb); err != nil {
		t.Fatalf("Write() = %v", err)
	}
	want := "S\t1\tAC\nS\t2\tGG\nL\t1\t+\t2\t+\t*\n"
	if sb.String() != want {
		t.Errorf("Write() =\n%q\nwant\n%q", sb.String(), want)
	}
}

func TestBuildGraph(t *testing.T) {
	f, err := Parse(strings.NewReader("S\t1\tAC\nS\t2\tGT\nL\t1\t+\t2\t+\t*\n"))
	if err != nil {
		t.Fatal(err)
	}
	g, meta, err := BuildGraph(f, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildGraph() = %v", err)
	}

	// supersource + (entry + 2 chars) per segment.
	if g.NumNodes() != 7 {
		t.Errorf("nodes = %d, want 7", g.NumNodes())
	}
	if !g.HasSupersource() {
		t.Error("missing supersource fan-out")
	}

	// The link joins segment 1's last char node (entry=1, chars=2,3) to
	// segment 2's first char with the right label.
	lastOf1 := 3
	var found bool
	for _, e := range g.Out(lastOf1) {
		if e.Label == 'G' && e.Type == graph.Orig {
			found = true
			if meta[e.To].Segment != "2" || meta[e.To].Offset != 1 {
				t.Errorf("link lands at %+v, want segment 2 offset 1", meta[e.To])
			}
		}
	}
	if !found {
		t.Error("no link edge labeled G out of segment 1's tail")
	}

	t.Run("WithTrie", func(t *testing.T) {
		g, _, err := BuildGraph(f, BuildOptions{TrieDepth: 1})
		if err != nil {
			t.Fatalf("BuildGraph() = %v", err)
		}
		if g.TrieDepth() != 1 {
			t.Errorf("TrieDepth() = %d, want 1", g.TrieDepth())
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, _, err := BuildGraph(&File{}, BuildOptions{}); !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidGraph) {
			t.Fatalf("BuildGraph(empty) = %v, want INVALID_GRAPH", err)
		}
	})
}
