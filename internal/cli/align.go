package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seqwork/grafalign/pkg/align"
	"github.com/seqwork/grafalign/pkg/astar"
	pkgerrors "github.com/seqwork/grafalign/pkg/errors"
	"github.com/seqwork/grafalign/pkg/fastx"
	"github.com/seqwork/grafalign/pkg/gfa"
	"github.com/seqwork/grafalign/pkg/graph"
)

// Algorithm names accepted by --algorithm.
const (
	AlgoSeeds    = "astar-seeds"
	AlgoPrefix   = "astar-prefix"
	AlgoDijkstra = "dijkstra"
)

// maxAutoTrieDepth bounds the automatically chosen trie depth.
const maxAutoTrieDepth = 12

// alignOpts holds the command-line flags for the align command.
type alignOpts struct {
	outputDir      string
	algorithm      string
	greedyMatch    bool
	treeDepth      int
	fixedTrieDepth bool
	threads        int
	kBest          int
	alignCostCap   float64
	configPath     string

	seedLen       int
	maxSeedErrors int

	prefixLenCap     int
	prefixCostCap    float64
	prefixEquivClass bool
}

// alignCommand creates the align command.
func (c *CLI) alignCommand() *cobra.Command {
	opts := alignOpts{
		outputDir:        ".",
		algorithm:        AlgoSeeds,
		greedyMatch:      true,
		threads:          runtime.NumCPU(),
		kBest:            1,
		seedLen:          12,
		maxSeedErrors:    2,
		prefixLenCap:     8,
		prefixCostCap:    5,
		prefixEquivClass: true,
	}

	cmd := &cobra.Command{
		Use:   "align <graph.gfa> <reads.fa>",
		Short: "Align FASTA/FASTQ reads to a GFA sequence graph",
		Long: `Align reads against a sequence graph and report minimum edit cost
alignments.

The graph must be on the forward strand (see 'grafalign convert'). Each
read is aligned end to end from the supersource; the result is written to
<output-dir>/alignments.tsv with the optimal cost, the alignment status
(unique, ambiguous, no-alignment) and the matched path.

Examples:
  grafalign align graph.gfa reads.fq
  grafalign align --algorithm astar-prefix --threads 8 graph.gfa reads.fa
  grafalign align --align-cost-cap 20 --k-best 5 graph.gfa reads.fa`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAlign(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", opts.outputDir, "directory for alignments.tsv")
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", opts.algorithm, "heuristic: astar-seeds, astar-prefix or dijkstra")
	cmd.Flags().BoolVar(&opts.greedyMatch, "greedy-match", opts.greedyMatch, "fast-forward deterministic exact matches")
	cmd.Flags().IntVar(&opts.treeDepth, "tree-depth", 0, "trie depth (0 = choose from graph size)")
	cmd.Flags().BoolVar(&opts.fixedTrieDepth, "fixed-trie-depth", false, "use --tree-depth exactly, never auto-adjust")
	cmd.Flags().IntVarP(&opts.threads, "threads", "t", opts.threads, "worker goroutines")
	cmd.Flags().IntVar(&opts.kBest, "k-best", opts.kBest, "report up to k co-optimal alignments per read")
	cmd.Flags().Float64Var(&opts.alignCostCap, "align-cost-cap", 0, "drop reads whose alignment exceeds this cost (0 = unlimited)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML file with the edit-cost model")

	cmd.Flags().IntVar(&opts.seedLen, "seed-len", opts.seedLen, "seed length in bp (astar-seeds)")
	cmd.Flags().IntVar(&opts.maxSeedErrors, "max-seed-errors", opts.maxSeedErrors, "per-seed error budget (astar-seeds)")

	cmd.Flags().IntVar(&opts.prefixLenCap, "prefix-len-cap", opts.prefixLenCap, "lookahead window length (astar-prefix)")
	cmd.Flags().Float64Var(&opts.prefixCostCap, "prefix-cost-cap", opts.prefixCostCap, "lookahead cost cap (astar-prefix)")
	cmd.Flags().BoolVar(&opts.prefixEquivClass, "prefix-equiv-classes", opts.prefixEquivClass, "collapse equivalent vertices (astar-prefix)")

	return cmd
}

// runAlign loads the inputs, runs the parallel driver and writes the
// output TSV plus a styled summary.
func (c *CLI) runAlign(ctx context.Context, graphPath, queryPath string, opts alignOpts) error {
	logger := c.Logger

	costs, err := loadCosts(opts.configPath)
	if err != nil {
		return err
	}

	// Graph.
	load := newProgress(logger)
	f, err := gfa.ParseFile(graphPath)
	if err != nil {
		return err
	}
	depth := opts.treeDepth
	if !opts.fixedTrieDepth {
		limit := maxAutoTrieDepth
		if opts.treeDepth > 0 {
			limit = opts.treeDepth
		}
		depth = graph.AutoTrieDepth(refSize(f), limit)
	}
	g, meta, err := gfa.BuildGraph(f, gfa.BuildOptions{TrieDepth: depth})
	if err != nil {
		return err
	}
	load.done(fmt.Sprintf("Loaded graph: %d nodes (%d reference), trie depth %d",
		g.NumNodes(), g.NumRefNodes(), g.TrieDepth()))

	// Reads.
	records, err := fastx.ParseFile(queryPath)
	if err != nil {
		return err
	}
	reads := make([]*align.Read, len(records))
	for i, rec := range records {
		reads[i] = &align.Read{Comment: rec.ID, Seq: []byte(rec.Seq)}
		if err := align.ValidateRead(reads[i]); err != nil {
			return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidRead, err, "query file %s", queryPath)
		}
	}
	logger.Info("loaded reads", "count", len(reads))

	params := align.Params{
		Costs:        costs,
		GreedyMatch:  opts.greedyMatch,
		MaxAlignCost: align.Cost(opts.alignCostCap),
	}

	// One heuristic per worker; the prefix memo is shared through Clone.
	// The driver builds workers sequentially, so appending is safe.
	var sharedPrefix *astar.Prefix
	var heuristics []align.Heuristic
	newHeuristic := func() align.Heuristic {
		var h align.Heuristic
		switch opts.algorithm {
		case AlgoSeeds:
			h = astar.NewSeeds(g, costs, astar.SeedParams{
				SeedLen:       opts.seedLen,
				MaxSeedErrors: opts.maxSeedErrors,
				ShiftsAllowed: opts.maxSeedErrors,
			})
		case AlgoPrefix:
			h = sharedPrefix.Clone()
		default:
			h = astar.None{}
		}
		heuristics = append(heuristics, h)
		return h
	}
	switch opts.algorithm {
	case AlgoSeeds, AlgoDijkstra:
	case AlgoPrefix:
		sharedPrefix = astar.NewPrefix(g, costs, astar.PrefixParams{
			MaxPrefixLen:     opts.prefixLenCap,
			MaxPrefixCost:    align.Cost(opts.prefixCostCap),
			CompressVertices: opts.prefixEquivClass,
		})
	default:
		return pkgerrors.New(pkgerrors.ErrCodeUnknownAlgorithm, "unknown algorithm %q", opts.algorithm)
	}

	driver := &align.Driver{
		NewAligner: func() *align.Aligner {
			return align.NewAligner(g, newHeuristic(), params, logger)
		},
		Workers: opts.threads,
		KBest:   opts.kBest,
		Logger:  logger,
	}

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("aligning %d reads", len(reads)))
	spin.Start()
	report, err := driver.Run(ctx, reads)
	spin.Stop()
	if err != nil {
		return err
	}

	outPath := filepath.Join(opts.outputDir, "alignments.tsv")
	if err := writeAlignments(outPath, report, meta); err != nil {
		return err
	}

	printSuccess("Aligned %d reads", len(reads))
	printFile(outPath)
	var reportHeur align.Heuristic
	if len(heuristics) > 0 {
		reportHeur = heuristics[0]
	}
	printSummary(report, opts.algorithm, reportHeur)
	return nil
}

// refSize returns the total reference length of a GFA file.
func refSize(f *gfa.File) int {
	n := 0
	for _, s := range f.Segments {
		n += len(s.Seq)
	}
	return n
}

// writeAlignments writes one TSV row per read: id, status, cost, matched
// spelling and the reference path in segment:offset form.
func writeAlignments(path string, report *align.RunReport, meta []gfa.NodeMeta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	fmt.Fprintf(fh, "# run %s\n", report.RunID)
	fmt.Fprintln(fh, "read\tstatus\tcost\tspelling\tpath")
	for _, res := range report.Results {
		spelling, nodes := "", ""
		if len(res.Finals) > 0 {
			spelling = align.PathSpelling(res.Path)
			nodes = formatPath(res.Path, meta)
		}
		fmt.Fprintf(fh, "%s\t%s\t%g\t%s\t%s\n",
			res.Read.Comment, res.Status, float64(res.Cost), spelling, nodes)
	}
	return nil
}

// formatPath renders the reference nodes of an edge path. Trie nodes are
// skipped; reference nodes use segment:offset when metadata is known.
func formatPath(path []graph.Edge, meta []gfa.NodeMeta) string {
	var parts []string
	for _, nodeID := range align.PathNodes(path) {
		if nodeID >= len(meta) || meta[nodeID].Segment == "" {
			continue
		}
		parts = append(parts, meta[nodeID].Segment+":"+strconv.Itoa(meta[nodeID].Offset))
	}
	return strings.Join(parts, ",")
}

// printSummary prints the styled end-of-run report: aligner counters plus
// the heuristic's parameters and statistics.
func printSummary(report *align.RunReport, algorithm string, heur align.Heuristic) {
	fmt.Println()
	fmt.Println(StyleTitle.Render("Alignment summary"))
	printKeyValue("run", report.RunID)
	printKeyValue("algorithm", algorithm)
	printKeyValue("unique", strconv.FormatInt(report.Stats.Unique, 10))
	printKeyValue("ambiguous", strconv.FormatInt(report.Stats.Ambiguous, 10))
	printKeyValue("no-alignment", strconv.FormatInt(report.Stats.NoAlignment, 10))
	printKeyValue("mean cost", fmt.Sprintf("%.2f", report.Stats.MeanCost()))
	fmt.Println()
	report.Stats.Print(os.Stdout)
	if heur != nil {
		fmt.Println()
		fmt.Println(StyleTitle.Render("Heuristic"))
		heur.PrintParams(os.Stdout)
		heur.PrintStats(os.Stdout)
	}
}
