// Package dag provides the directed acyclic graph shared by every stage of
// blueprint: dependency graph construction, layered layout, selection
// propagation and execution state projection.
//
// # Overview
//
// Nodes are notebooks (or jobs) and an edge points from a producer to a
// consumer. The graph keeps nodes and edges in insertion order and every
// accessor returns them in that order. Layout and selection results are
// therefore reproducible for identical input, which the layout engine
// depends on for stable highlighting across re-renders.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "load"})
//	g.AddNode(dag.Node{ID: "train"})
//	g.AddEdge(dag.Edge{From: "load", To: "train", Tags: []string{"/data"}})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.Ancestors]
// and [DAG.TopologicalSort]. [DAG.Validate] reports a [CycleError] naming
// the cycle path.
//
// # Layers
//
// After layering (see the transform subpackage) every node carries a
// [Node.Layer]. Long edges are subdivided into chains of [NodeKindDummy]
// nodes so that [DAG.ValidateLayered] holds: each edge connects layer L to
// layer L+1.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree to count
// inversions in O(E log V) time. The crossing reduction sweeps of the
// layout engine call them once per candidate ordering.
//
// # Concurrency
//
// DAG instances are not safe for concurrent mutation. Read-only use from
// several goroutines is fine.
package dag
