package gfa

import (
	pkgerrors "github.com/seqwork/grafalign/pkg/errors"
	"github.com/seqwork/grafalign/pkg/graph"
)

// BuildOptions controls the conversion of a GFA file into a sequence graph.
type BuildOptions struct {
	// TrieDepth attaches a read-prefix trie with the given number of
	// levels. Zero attaches a plain supersource fan-out instead.
	TrieDepth int
}

// NodeMeta locates a reference node back in the GFA input. Offset is the
// 1-based position of the character consumed by the node's incoming
// edges; entry nodes have offset 0.
type NodeMeta struct {
	Segment string
	Offset  int
}

// BuildGraph converts a canonical (forward-strand) GFA file into a
// sequence graph: one entry node plus one node per character for every
// segment, Orig edges labeled with the character they consume, and link
// edges joining the end of one segment to the first character of another.
// The returned metadata is indexed by reference node id.
func BuildGraph(f *File, opts BuildOptions) (*graph.Graph, []NodeMeta, error) {
	if len(f.Segments) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.ErrCodeInvalidGraph, "gfa file has no segments")
	}

	n := 1 // supersource
	for _, s := range f.Segments {
		n += len(s.Seq) + 1
	}
	g := graph.New(n)
	meta := make([]NodeMeta, n)

	entry := make(map[string]int, len(f.Segments)) // segment -> entry node
	last := make(map[string]int, len(f.Segments))  // segment -> last char node
	next := 1
	for _, s := range f.Segments {
		entry[s.Name] = next
		meta[next] = NodeMeta{Segment: s.Name, Offset: 0}
		for i := 0; i < len(s.Seq); i++ {
			meta[next+1+i] = NodeMeta{Segment: s.Name, Offset: i + 1}
			if err := g.AddEdge(next+i, next+1+i, s.Seq[i], graph.Orig); err != nil {
				return nil, nil, err
			}
		}
		last[s.Name] = next + len(s.Seq)
		next += len(s.Seq) + 1
	}

	for _, l := range f.Links {
		to, ok := f.Segment(l.To)
		if !ok || len(to.Seq) == 0 {
			continue
		}
		if err := g.AddEdge(last[l.From], entry[l.To]+1, to.Seq[0], graph.Orig); err != nil {
			return nil, nil, err
		}
	}

	if opts.TrieDepth > 0 {
		g.AttachTrie(opts.TrieDepth)
	} else {
		g.AttachFanout()
	}

	if err := g.Validate(); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidGraph, err, "built graph is invalid")
	}
	return g, meta, nil
}
