package graph

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/depgraph"
)

// Node kinds.
const (
	KindNotebook = "notebook"
	KindJob      = "job"
	KindDummy    = "dummy"
)

// Graph is the serialization format for dependency graphs.
//
// Nodes and edges keep the DAG's insertion order. Layout ties are broken
// by input order, so a decoded graph lays out exactly like the original.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is a serialized graph node.
type Node struct {
	ID       string         `json:"id" bson:"id"`
	Label    string         `json:"label,omitempty" bson:"label,omitempty"` // Display label (defaults to ID)
	Layer    int            `json:"layer,omitempty" bson:"layer,omitempty"`
	Kind     string         `json:"kind,omitempty" bson:"kind,omitempty"`
	MasterID string         `json:"master_id,omitempty" bson:"master_id,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// IsDummy returns true if this is a synthetic subdivision node.
func (n *Node) IsDummy() bool { return n.Kind == KindDummy }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a serialized dependency edge.
type Edge struct {
	From string   `json:"from" bson:"from"`
	To   string   `json:"to" bson:"to"`
	Tags []string `json:"tags,omitempty" bson:"tags,omitempty"`
}

// FromDAG converts a DAG to its serialization format.
func FromDAG(g *dag.DAG) Graph {
	out := Graph{Nodes: []Node{}, Edges: []Edge{}}
	if g == nil {
		return out
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, nodeFromDAG(n))
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To, Tags: e.Tags})
	}
	return out
}

// ToDAG converts a Graph to a DAG.
// Returns an error if the structure violates DAG constraints.
func ToDAG(gj Graph) (*dag.DAG, error) {
	d := dag.New(nil)

	for _, nj := range gj.Nodes {
		n := dag.Node{
			ID:       nj.ID,
			Label:    nj.Label,
			Layer:    nj.Layer,
			Meta:     maps.Clone(nj.Meta),
			MasterID: nj.MasterID,
		}
		if nj.IsDummy() {
			n.Kind = dag.NodeKindDummy
		}
		if err := d.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}

	for _, ej := range gj.Edges {
		if err := d.AddEdge(dag.Edge{From: ej.From, To: ej.To, Tags: ej.Tags}); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.From, ej.To, err)
		}
	}

	return d, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

func nodeFromDAG(n *dag.Node) Node {
	node := Node{
		ID:       n.ID,
		Layer:    n.Layer,
		MasterID: n.MasterID,
		Kind:     kindOf(n.Kind, n.Meta),
	}
	if n.Label != n.ID {
		node.Label = n.Label
	}
	if len(n.Meta) > 0 {
		node.Meta = maps.Clone(map[string]any(n.Meta))
	}
	return node
}

// kindOf derives the wire kind: dummies are "dummy", nodes carrying a job
// id are "job", everything else is a notebook.
func kindOf(k dag.NodeKind, meta dag.Metadata) string {
	if k == dag.NodeKindDummy {
		return KindDummy
	}
	if id, ok := meta[depgraph.MetaJobID].(string); ok && id != "" {
		return KindJob
	}
	return KindNotebook
}
