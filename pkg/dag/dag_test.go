package dag

import (
	"errors"
	"slices"
	"testing"
)

func diamond(t *testing.T) *DAG {
	t.Helper()
	g := New(nil)
	for _, id := range []string{"n1", "n2", "n3", "n4"} {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range [][2]string{{"n1", "n2"}, {"n1", "n3"}, {"n2", "n4"}, {"n3", "n4"}} {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%v): %v", e, err)
		}
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty id: got %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: got %v, want ErrDuplicateNodeID", err)
	}
	n, ok := g.Node("a")
	if !ok {
		t.Fatal("node a not found")
	}
	if n.Label != "a" {
		t.Errorf("Label = %q, want default to ID", n.Label)
	}
	if n.Meta == nil {
		t.Error("Meta should be initialised")
	}
}

func TestAddEdge(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"unknown source", Edge{From: "x", To: "b"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
		{"self loop", Edge{From: "a", To: "a"}, ErrSelfLoop},
		{"valid", Edge{From: "a", To: "b"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() = %v, want %v", err, tt.want)
			}
		})
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New(nil)
	ids := []string{"zeta", "alpha", "mid", "beta"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}
	for i := 0; i < 5; i++ {
		if got := g.NodeIDs(); !slices.Equal(got, ids) {
			t.Fatalf("NodeIDs() = %v, want %v", got, ids)
		}
	}
}

func TestAncestors(t *testing.T) {
	g := diamond(t)

	tests := []struct {
		start []string
		want  []string
	}{
		{[]string{"n4"}, []string{"n1", "n2", "n3"}},
		{[]string{"n2"}, []string{"n1"}},
		{[]string{"n1"}, nil},
		{[]string{"n2", "n4"}, []string{"n1", "n2", "n3"}},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := g.Ancestors(tt.start...); !slices.Equal(got, tt.want) {
			t.Errorf("Ancestors(%v) = %v, want %v", tt.start, got, tt.want)
		}
	}
}

func TestTopologicalSort(t *testing.T) {
	g := diamond(t)
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort: %v", err)
	}
	want := []string{"n1", "n2", "n3", "n4"}
	if !slices.Equal(order, want) {
		t.Errorf("TopologicalSort() = %v, want %v", order, want)
	}

	_ = g.AddEdge(Edge{From: "n4", To: "n1"})
	_, err = g.TopologicalSort()
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if !errors.Is(err, ErrGraphHasCycle) {
		t.Error("CycleError should unwrap to ErrGraphHasCycle")
	}
	if cycle.Path[0] != cycle.Path[len(cycle.Path)-1] {
		t.Errorf("cycle path %v should start and end on the same node", cycle.Path)
	}
}

func TestFindCycle(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c", "d"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "b", To: "c"})
	_ = g.AddEdge(Edge{From: "c", To: "d"})
	if c := g.FindCycle(); c != nil {
		t.Fatalf("FindCycle() on chain = %v", c)
	}

	_ = g.AddEdge(Edge{From: "d", To: "b"})
	c := g.FindCycle()
	if c == nil {
		t.Fatal("FindCycle() = nil, want cycle")
	}
	want := []string{"b", "c", "d", "b"}
	if !slices.Equal(c.Path, want) {
		t.Errorf("Path = %v, want %v", c.Path, want)
	}
}

func TestValidateLayered(t *testing.T) {
	g := diamond(t)
	g.SetLayers(map[string]int{"n1": 0, "n2": 1, "n3": 1, "n4": 2})
	if err := g.ValidateLayered(); err != nil {
		t.Errorf("ValidateLayered() = %v", err)
	}
	g.SetLayers(map[string]int{"n4": 3})
	if err := g.ValidateLayered(); !errors.Is(err, ErrNonConsecutiveLayers) {
		t.Errorf("ValidateLayered() = %v, want ErrNonConsecutiveLayers", err)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := diamond(t)
	g.RemoveEdge("n1", "n2")
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	if slices.Contains(g.Children("n1"), "n2") {
		t.Error("n2 still a child of n1")
	}
	if _, ok := g.Edge("n1", "n2"); ok {
		t.Error("Edge(n1, n2) still present")
	}
}

func TestClone(t *testing.T) {
	g := diamond(t)
	c := g.Clone()
	c.RemoveEdge("n1", "n2")
	_ = c.AddNode(Node{ID: "n5"})
	if g.EdgeCount() != 4 || g.NodeCount() != 4 {
		t.Errorf("original mutated: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestCountLayerCrossings(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c", "x", "y", "z"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "z"})
	_ = g.AddEdge(Edge{From: "b", To: "y"})
	_ = g.AddEdge(Edge{From: "c", To: "x"})

	tests := []struct {
		name  string
		lower []string
		want  int
	}{
		{"fully reversed", []string{"x", "y", "z"}, 3},
		{"aligned", []string{"z", "y", "x"}, 0},
		{"one swap", []string{"y", "z", "x"}, 1},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountLayerCrossings(g, []string{"a", "b", "c"}, tt.lower); got != tt.want {
				t.Errorf("CountLayerCrossings() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountPairCrossings(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "x", "y"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "y"})
	_ = g.AddEdge(Edge{From: "b", To: "x"})
	pos := PosMap([]string{"x", "y"})

	if got := CountPairCrossings(g, "a", "b", pos, false); got != 1 {
		t.Errorf("a before b = %d, want 1", got)
	}
	if got := CountPairCrossings(g, "b", "a", pos, false); got != 0 {
		t.Errorf("b before a = %d, want 0", got)
	}
}
