package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [DAG.AddEdge] when From and To are the same node.
	ErrSelfLoop = errors.New("edge connects a node to itself")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrNonConsecutiveLayers is returned by [DAG.ValidateLayered] when an
	// edge connects nodes that are not in adjacent layers.
	ErrNonConsecutiveLayers = errors.New("edges must connect consecutive layers")

	// ErrGraphHasCycle is wrapped by [CycleError].
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// CycleError reports a directed cycle. Path lists the node IDs along the
// cycle with the first node repeated at the end, e.g. [a b c a].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrGraphHasCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrGraphHasCycle }

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil once added to a DAG.
type Metadata map[string]any

// NodeKind distinguishes original nodes from nodes created during layout.
type NodeKind int

const (
	// NodeKindRegular represents a notebook or job from the input data.
	NodeKindRegular NodeKind = iota
	// NodeKindDummy represents a synthetic node inserted to subdivide an
	// edge that spans more than one layer. MasterID names the edge source.
	NodeKindDummy
)

// Node is a vertex of the dependency graph.
//
// The zero value is not usable - ID must be set before adding to a DAG.
type Node struct {
	ID    string   // Unique identifier (notebook id or job id)
	Label string   // Display label; defaults to ID
	Layer int      // Rank assigned by layering (0 = roots)
	Meta  Metadata // Arbitrary key-value metadata (never nil after AddNode)

	Kind     NodeKind
	MasterID string
}

// IsDummy reports whether the node was inserted to break a long edge.
func (n Node) IsDummy() bool { return n.Kind == NodeKindDummy }

// EffectiveID returns MasterID if set (for dummies), otherwise the node's ID.
func (n Node) EffectiveID() string {
	if n.MasterID != "" {
		return n.MasterID
	}
	return n.ID
}

// Edge is a directed dependency from a producer (From) to a consumer (To).
// Tags lists the resource tags that connect the two, in input order; it is
// empty for edges derived from explicit parent references.
type Edge struct {
	From string
	To   string
	Tags []string
	Meta Metadata
}

// DAG is a directed acyclic graph of notebooks or jobs.
//
// Every accessor returns nodes and edges in insertion order, so any
// algorithm that walks the graph through this API is deterministic.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	order    []*Node
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode appends a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	if n.Label == "" {
		n.Label = n.ID
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// AddEdge does not check for cycles; use Validate after building the graph.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.From == e.To {
		return ErrSelfLoop
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
func (d *DAG) RemoveEdge(from, to string) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	d.outgoing[from] = slices.DeleteFunc(d.outgoing[from], func(s string) bool { return s == to })
	d.incoming[to] = slices.DeleteFunc(d.incoming[to], func(s string) bool { return s == from })
}

// SetLayers updates layer assignments. Nodes absent from layers keep their
// current layer.
func (d *DAG) SetLayers(layers map[string]int) {
	for _, n := range d.order {
		if l, ok := layers[n.ID]; ok {
			n.Layer = l
		}
	}
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs.
func (d *DAG) Nodes() []*Node { return slices.Clone(d.order) }

// NodeIDs returns all node IDs in insertion order.
func (d *DAG) NodeIDs() []string { return NodeIDs(d.order) }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// Edge returns the edge from→to and true, or a zero Edge and false.
func (d *DAG) Edge(from, to string) (Edge, bool) {
	for _, e := range d.edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.order) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs of consumers of the node, in edge insertion order.
// The returned slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of producers of the node, in edge insertion order.
// The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Has reports whether the graph contains a node with the given ID.
func (d *DAG) Has(id string) bool {
	_, ok := d.nodes[id]
	return ok
}

// NodesInLayer returns the nodes assigned to the given layer, in insertion order.
func (d *DAG) NodesInLayer(layer int) []*Node {
	var result []*Node
	for _, n := range d.order {
		if n.Layer == layer {
			result = append(result, n)
		}
	}
	return result
}

// LayerCount returns one plus the highest layer index, or 0 for an empty graph.
func (d *DAG) LayerCount() int {
	if len(d.order) == 0 {
		return 0
	}
	return d.MaxLayer() + 1
}

// MaxLayer returns the highest layer index, or 0 if the graph is empty.
func (d *DAG) MaxLayer() int {
	maxLayer := 0
	for _, n := range d.order {
		maxLayer = max(maxLayer, n.Layer)
	}
	return maxLayer
}

// Sources returns nodes with no incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, n := range d.order {
		if len(d.incoming[n.ID]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, n := range d.order {
		if len(d.outgoing[n.ID]) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

// Ancestors returns every node reachable from the given IDs by following
// edges backwards, excluding the starting IDs themselves unless one of them
// is an ancestor of another. The result is in insertion order.
func (d *DAG) Ancestors(ids ...string) []string {
	return d.reach(ids, d.incoming)
}

// Descendants returns every node reachable from the given IDs by following
// edges forwards. The result is in insertion order.
func (d *DAG) Descendants(ids ...string) []string {
	return d.reach(ids, d.outgoing)
}

func (d *DAG) reach(start []string, adj map[string][]string) []string {
	seen := make(map[string]bool)
	stack := make([]string, 0, len(start))
	for _, id := range start {
		stack = append(stack, adj[id]...)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, adj[id]...)
	}
	var result []string
	for _, n := range d.order {
		if seen[n.ID] {
			result = append(result, n.ID)
		}
	}
	return result
}

// TopologicalSort returns node IDs such that every edge goes from an
// earlier to a later ID. Ready nodes are emitted in insertion order
// (Kahn's algorithm), so the result is stable for identical input.
// A cyclic graph yields a *CycleError.
func (d *DAG) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(d.order))
	queue := make([]string, 0, len(d.order))
	for _, n := range d.order {
		inDegree[n.ID] = len(d.incoming[n.ID])
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	sorted := make([]string, 0, len(d.order))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		sorted = append(sorted, curr)
		for _, child := range d.outgoing[curr] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(sorted) != len(d.order) {
		if cycle := d.FindCycle(); cycle != nil {
			return nil, cycle
		}
		return nil, ErrGraphHasCycle
	}
	return sorted, nil
}

// Validate checks that every edge connects existing nodes and that the
// graph is acyclic. A cycle is reported as a *CycleError.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		if !d.Has(e.From) || !d.Has(e.To) {
			return ErrInvalidEdgeEndpoint
		}
	}
	if cycle := d.FindCycle(); cycle != nil {
		return cycle
	}
	return nil
}

// ValidateLayered checks that every edge connects a node in layer L to a
// node in layer L+1, as required after subdivision.
func (d *DAG) ValidateLayered() error {
	if err := d.Validate(); err != nil {
		return err
	}
	for _, e := range d.edges {
		if d.nodes[e.To].Layer != d.nodes[e.From].Layer+1 {
			return ErrNonConsecutiveLayers
		}
	}
	return nil
}

// FindCycle returns a *CycleError describing the first cycle found by a
// depth-first search in insertion order, or nil if the graph is acyclic.
func (d *DAG) FindCycle() *CycleError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.order))
	var stack []string
	var found []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				start := slices.Index(stack, child)
				found = append(slices.Clone(stack[start:]), child)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, n := range d.order {
		if color[n.ID] == white && dfs(n.ID) {
			return &CycleError{Path: found}
		}
	}
	return nil
}

// Clone returns a deep copy of the graph structure. Metadata maps are
// copied shallowly.
func (d *DAG) Clone() *DAG {
	c := New(cloneMeta(d.meta))
	for _, n := range d.order {
		cp := *n
		cp.Meta = cloneMeta(n.Meta)
		_ = c.AddNode(cp)
	}
	for _, e := range d.edges {
		cp := e
		cp.Tags = slices.Clone(e.Tags)
		cp.Meta = cloneMeta(e.Meta)
		_ = c.AddEdge(cp)
	}
	return c
}

func cloneMeta(m Metadata) Metadata {
	c := make(Metadata, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// PosMap creates a position lookup map from a slice of node IDs.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
