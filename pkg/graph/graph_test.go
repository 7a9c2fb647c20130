package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/depgraph"
	"github.com/matzehuels/blueprint/pkg/layout"
)

func diamond(t *testing.T) *dag.DAG {
	t.Helper()
	g := dag.New(nil)
	for _, n := range []dag.Node{
		{ID: "N4", Label: "report.ipynb"},
		{ID: "N1", Label: "ingest.ipynb", Meta: dag.Metadata{depgraph.MetaPath: "pipeline/ingest.ipynb"}},
		{ID: "N2"},
		{ID: "N3", Meta: dag.Metadata{depgraph.MetaJobID: "j3"}},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []dag.Edge{
		{From: "N1", To: "N2", Tags: []string{"/A"}},
		{From: "N1", To: "N3", Tags: []string{"/A"}},
		{From: "N2", To: "N4"},
		{From: "N3", To: "N4", Tags: []string{"/B", "/C"}},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestFromDAG(t *testing.T) {
	gj := FromDAG(diamond(t))

	ids := make([]string, len(gj.Nodes))
	for i, n := range gj.Nodes {
		ids[i] = n.ID
	}
	if diff := cmp.Diff([]string{"N4", "N1", "N2", "N3"}, ids); diff != "" {
		t.Errorf("node order (-want +got):\n%s", diff)
	}

	tests := []struct {
		id    string
		label string
		kind  string
	}{
		{"N4", "report.ipynb", KindNotebook},
		{"N2", "", KindNotebook},
		{"N3", "", KindJob},
	}
	for _, tt := range tests {
		var n Node
		for _, c := range gj.Nodes {
			if c.ID == tt.id {
				n = c
			}
		}
		if n.Label != tt.label || n.Kind != tt.kind {
			t.Errorf("%s = label %q kind %q, want %q %q", tt.id, n.Label, n.Kind, tt.label, tt.kind)
		}
	}
	if got := gj.Edges[3].Tags; !cmp.Equal(got, []string{"/B", "/C"}) {
		t.Errorf("edge tags = %v", got)
	}
}

func TestFromDAG_Nil(t *testing.T) {
	gj := FromDAG(nil)
	data, err := json.Marshal(gj)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"nodes":[],"edges":[]}` {
		t.Errorf("FromDAG(nil) = %s", data)
	}
}

func TestGraphRoundTrip(t *testing.T) {
	orig := diamond(t)
	data, err := MarshalGraph(orig)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	got, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}

	if diff := cmp.Diff(orig.NodeIDs(), got.NodeIDs()); diff != "" {
		t.Errorf("node order (-want +got):\n%s", diff)
	}
	if got.EdgeCount() != orig.EdgeCount() {
		t.Errorf("edges = %d, want %d", got.EdgeCount(), orig.EdgeCount())
	}
	n, _ := got.Node("N1")
	if n.Label != "ingest.ipynb" || n.Meta[depgraph.MetaPath] != "pipeline/ingest.ipynb" {
		t.Errorf("N1 = %+v", n)
	}
	if n, _ := got.Node("N2"); n.Label != "N2" {
		t.Errorf("N2 label = %q, want default", n.Label)
	}
}

func TestGraphRoundTrip_Dummy(t *testing.T) {
	gj := Graph{
		Nodes: []Node{
			{ID: "a"},
			{ID: "a_b_1", Kind: KindDummy, MasterID: "a", Layer: 1},
			{ID: "b", Layer: 2},
		},
		Edges: []Edge{{From: "a", To: "a_b_1"}, {From: "a_b_1", To: "b"}},
	}
	g, err := ToDAG(gj)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := g.Node("a_b_1")
	if !n.IsDummy() || n.MasterID != "a" || n.Layer != 1 {
		t.Errorf("dummy = %+v", n)
	}
	if back := FromDAG(g); back.Nodes[1].Kind != KindDummy {
		t.Errorf("kind = %q, want dummy", back.Nodes[1].Kind)
	}
}

func TestToDAG_Errors(t *testing.T) {
	tests := []struct {
		name string
		g    Graph
		want string
	}{
		{"empty id", Graph{Nodes: []Node{{ID: ""}}}, "add node"},
		{"duplicate", Graph{Nodes: []Node{{ID: "a"}, {ID: "a"}}}, "add node a"},
		{"unknown target", Graph{Nodes: []Node{{ID: "a"}}, Edges: []Edge{{From: "a", To: "x"}}}, "add edge a→x"},
		{"self loop", Graph{Nodes: []Node{{ID: "a"}}, Edges: []Edge{{From: "a", To: "a"}}}, "add edge a→a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToDAG(tt.g)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ToDAG() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestReadGraph_InvalidJSON(t *testing.T) {
	if _, err := ReadGraph(strings.NewReader("{")); err == nil {
		t.Error("expected decode error")
	}
	if _, err := UnmarshalGraph([]byte("nope")); err == nil {
		t.Error("expected unmarshal error")
	}
}

func TestGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(diamond(t), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if g.NodeCount() != 4 {
		t.Errorf("nodes = %d, want 4", g.NodeCount())
	}
	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	l, err := layout.Compute(diamond(t), layout.Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}

	if got.Direction != l.Direction || got.Width != l.Width || got.Height != l.Height || got.Crossings != l.Crossings {
		t.Errorf("header = %v %g×%g %d, want %v %g×%g %d",
			got.Direction, got.Width, got.Height, got.Crossings, l.Direction, l.Width, l.Height, l.Crossings)
	}
	if len(got.Nodes) != len(l.Nodes) || len(got.Edges) != len(l.Edges) {
		t.Fatalf("got %d nodes %d edges, want %d %d", len(got.Nodes), len(got.Edges), len(l.Nodes), len(l.Edges))
	}
	for _, want := range l.Nodes {
		n, ok := got.Node(want.ID)
		if !ok {
			t.Fatalf("node %s missing after round trip", want.ID)
		}
		if n.X != want.X || n.Y != want.Y || n.Layer != want.Layer || n.Order != want.Order {
			t.Errorf("%s = %+v, want %+v", want.ID, n, want)
		}
	}
	for i, e := range l.Edges {
		if got.Edges[i].Path != e.Path || !cmp.Equal(got.Edges[i].Points, e.Points) {
			t.Errorf("edge %s→%s differs after round trip", e.From, e.To)
		}
	}
}

func TestExportLayout_Kinds(t *testing.T) {
	l, err := layout.Compute(diamond(t), layout.Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range ExportLayout(l).Nodes {
		want := KindNotebook
		if n.ID == "N3" {
			want = KindJob
		}
		if n.Kind != want {
			t.Errorf("%s kind = %q, want %q", n.ID, n.Kind, want)
		}
	}
}

func TestExportLayout_Empty(t *testing.T) {
	out := ExportLayout(nil)
	if out.Direction != layout.TopDown || out.Nodes == nil || out.Edges == nil {
		t.Errorf("ExportLayout(nil) = %+v", out)
	}
	l, err := out.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if !l.Empty() {
		t.Error("parsed empty layout has nodes")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   Layout
	}{
		{"bad direction", Layout{Direction: "diagonal"}},
		{"missing id", Layout{Nodes: []LayoutNode{{Label: "x"}}}},
		{"duplicate id", Layout{Nodes: []LayoutNode{{ID: "a"}, {ID: "a"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.in.Parse(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLayoutFile(t *testing.T) {
	l, err := layout.Compute(diamond(t), layout.Options{Direction: layout.LeftRight})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if got.Direction != layout.LeftRight || len(got.Nodes) != 4 {
		t.Errorf("got %v with %d nodes", got.Direction, len(got.Nodes))
	}
}
