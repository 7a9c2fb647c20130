package transform

import (
	"fmt"
	"slices"

	"github.com/matzehuels/blueprint/pkg/dag"
)

// Chain records how an original edge was routed after subdivision.
// Path starts at From, lists the inserted dummy nodes layer by layer and
// ends at To. An edge between adjacent layers has Path [From, To].
type Chain struct {
	From string
	To   string
	Tags []string
	Path []string
}

// Dummies returns the synthetic nodes of the chain, excluding its endpoints.
func (c Chain) Dummies() []string {
	if len(c.Path) <= 2 {
		return nil
	}
	return c.Path[1 : len(c.Path)-1]
}

// Subdivide breaks edges that span multiple layers into sequences of
// single-layer edges connected by synthetic dummy nodes.
//
// Every edge of the result connects a node in layer L to a node in layer
// L+1, so [dag.DAG.ValidateLayered] holds afterwards. For example:
//
//	Before: load (layer 0) → report (layer 3)
//	After:  load → load->report_sub_1 → load->report_sub_2 → report
//
// Each dummy carries [dag.NodeKindDummy] and a MasterID naming the edge
// source. Tags and metadata move to the final edge of each chain.
//
// Subdivide returns one [Chain] per original edge, in original edge order.
// Layers must already be assigned (see [AssignLayers]).
//
// # Node IDs
//
// Dummy IDs have the form "from->to_sub_layer". If a collision occurs, a
// numeric suffix is appended ("a->b_sub_1__1"). All generated IDs are
// tracked to guarantee uniqueness.
//
// # Performance
//
// Time complexity is O(V + E·D) where D is the layer count.
func Subdivide(g *dag.DAG) []Chain {
	gen := newIDGen(g.Nodes())
	edges := g.Edges()
	chains := make([]Chain, 0, len(edges))

	for _, e := range edges {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		chain := Chain{From: e.From, To: e.To, Tags: slices.Clone(e.Tags), Path: []string{e.From}}
		if !srcOK || !dstOK || dst.Layer <= src.Layer+1 {
			chain.Path = append(chain.Path, e.To)
			chains = append(chains, chain)
			continue
		}

		g.RemoveEdge(e.From, e.To)
		prevID := src.ID
		for layer := src.Layer + 1; layer < dst.Layer; layer++ {
			prevID = addDummy(g, gen, prevID, e, layer)
			chain.Path = append(chain.Path, prevID)
		}
		if err := g.AddEdge(dag.Edge{From: prevID, To: dst.ID, Tags: e.Tags, Meta: e.Meta}); err != nil {
			panic(err)
		}
		chain.Path = append(chain.Path, dst.ID)
		chains = append(chains, chain)
	}
	return chains
}

func addDummy(g *dag.DAG, gen *idGen, from string, e dag.Edge, layer int) string {
	id := gen.next(e.From+"->"+e.To, layer)
	if err := g.AddNode(dag.Node{
		ID:       id,
		Label:    " ",
		Layer:    layer,
		Kind:     dag.NodeKindDummy,
		MasterID: e.From,
	}); err != nil {
		panic(err)
	}
	if err := g.AddEdge(dag.Edge{From: from, To: id}); err != nil {
		panic(err)
	}
	return id
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, layer int) string {
	prefix := fmt.Sprintf("%s_sub_%d", base, layer)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
