package render

import (
	"strings"
	"testing"

	"github.com/seqwork/grafalign/pkg/gfa"
	"github.com/seqwork/grafalign/pkg/graph"
)

func TestToDOT(t *testing.T) {
	g := graph.New(3)
	g.AddEdge(0, 1, 'A', graph.Orig)
	g.AddEdge(1, 2, 'C', graph.Orig)
	meta := []gfa.NodeMeta{{}, {Segment: "s", Offset: 1}, {Segment: "s", Offset: 2}}

	dot := ToDOT(g, meta, Options{})

	for _, want := range []string{
		"digraph G {",
		`label="src"`,
		`label="s:1"`,
		`0 -> 1 [label="A"]`,
		`1 -> 2 [label="C"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTSkipsTrieByDefault(t *testing.T) {
	g := graph.New(3)
	g.AddEdge(0, 1, 'A', graph.Orig)
	g.AddEdge(1, 2, 'C', graph.Orig)
	g.AttachTrie(1)

	plain := ToDOT(g, nil, Options{})
	if strings.Contains(plain, "lightgrey") {
		t.Error("trie nodes drawn without --trie")
	}

	full := ToDOT(g, nil, Options{IncludeTrie: true})
	if !strings.Contains(full, "lightgrey") {
		t.Error("trie nodes missing with IncludeTrie")
	}
}

func TestToDOTEpsEdgesDashed(t *testing.T) {
	g := graph.New(2)
	g.AddEdge(0, 1, 'A', graph.Orig)
	g.AttachFanout()

	dot := ToDOT(g, nil, Options{})
	if !strings.Contains(dot, "style=dashed") {
		t.Error("eps fan-out edges should be dashed")
	}
}
