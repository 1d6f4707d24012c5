// Package render converts a sequence graph to Graphviz DOT and renders it
// to SVG for inspection of small references.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/seqwork/grafalign/pkg/gfa"
	"github.com/seqwork/grafalign/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// IncludeTrie also draws trie nodes and their jumps. Off by default:
	// tries dwarf the reference part on anything but toy graphs.
	IncludeTrie bool
}

// ToDOT converts a sequence graph to Graphviz DOT. Reference nodes are
// labeled with their segment and offset when metadata is available; edges
// carry their nucleotide label. Trie nodes, when included, are drawn
// dashed and grey.
func ToDOT(g *graph.Graph, meta []gfa.NodeMeta, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for v := 0; v < g.NumNodes(); v++ {
		if g.NodeInTrie(v) && !opts.IncludeTrie {
			continue
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", v, nodeAttrs(g, meta, v))
	}

	buf.WriteString("\n")
	for v := 0; v < g.NumNodes(); v++ {
		if g.NodeInTrie(v) && !opts.IncludeTrie {
			continue
		}
		for _, e := range g.Out(v) {
			if (g.NodeInTrie(e.To) || g.NodeInTrie(v)) && !opts.IncludeTrie {
				continue
			}
			label := string(e.Label)
			style := ""
			if e.Label == graph.Eps {
				label = "ε"
				style = ", style=dashed"
			}
			fmt.Fprintf(&buf, "  %d -> %d [label=%q%s];\n", v, e.To, label, style)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(g *graph.Graph, meta []gfa.NodeMeta, v int) string {
	label := fmt.Sprintf("%d", v)
	if v == 0 {
		return fmt.Sprintf("label=%q, shape=doublecircle", "src")
	}
	if v < len(meta) && meta[v].Segment != "" {
		label = fmt.Sprintf("%s:%d", meta[v].Segment, meta[v].Offset)
	}
	if g.NodeInTrie(v) {
		return fmt.Sprintf("label=%q, style=\"filled,dashed\", fillcolor=lightgrey", label)
	}
	return fmt.Sprintf("label=%q", label)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
