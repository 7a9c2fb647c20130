package selection

import (
	"slices"
	"testing"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/depgraph"
	"github.com/matzehuels/blueprint/pkg/model"
)

func diamondNotebooks() []model.Notebook {
	return []model.Notebook{
		{ID: "N1", Path: "pipeline/ingest/1.ipynb", Inputs: []string{model.TagStart}, Outputs: []string{"/A", "/B"}},
		{ID: "N2", Path: "pipeline/ingest/2.ipynb", Inputs: []string{"/A"}, Outputs: []string{"/C"}},
		{ID: "N3", Path: "pipeline/model/3.ipynb", Inputs: []string{"/B"}, Outputs: []string{"/D"}},
		{ID: "N4", Path: "report.ipynb", Inputs: []string{"/C", "/D"}, Outputs: []string{model.TagEnd}},
	}
}

func fixture(t *testing.T) (*dag.DAG, *Hierarchy) {
	t.Helper()
	nbs := diamondNotebooks()
	g, err := depgraph.FromNotebooks(nbs)
	if err != nil {
		t.Fatalf("FromNotebooks: %v", err)
	}
	return g, BuildHierarchy(nbs, Changes{Created: []string{"N3"}, Updated: []string{"N4"}})
}

func eq(t *testing.T, name string, got, want []string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestCompute_DiamondTerminal(t *testing.T) {
	g, h := fixture(t)
	s := Compute(g, h, []string{"N4"})

	eq(t, "Terminal", s.Terminal, []string{"N4"})
	eq(t, "Implied", s.Implied, []string{"N1", "N2", "N3"})
	eq(t, "Selected", s.Selected, []string{"N1", "N2", "N3", "N4"})
	eq(t, "Disabled", s.Disabled, []string{"N1", "N2", "N3"})
	if s.Dropped != nil {
		t.Errorf("Dropped = %v", s.Dropped)
	}
}

func TestToggle_DeselectReleasesDependencies(t *testing.T) {
	g, h := fixture(t)
	s := Compute(g, h, []string{"N4"})
	s = Toggle(g, h, s, "N4")

	if !s.Empty() {
		t.Errorf("after deselect: %+v, want empty", s)
	}
	if s.Implied != nil {
		t.Errorf("Implied = %v, want empty", s.Implied)
	}
}

func TestToggle_SharedDependencyStays(t *testing.T) {
	g, h := fixture(t)
	s := Compute(g, h, []string{"N2", "N3"})
	eq(t, "Implied", s.Implied, []string{"N1"})

	s = Toggle(g, h, s, "N2")
	eq(t, "Terminal", s.Terminal, []string{"N3"})
	eq(t, "Selected", s.Selected, []string{"N1", "N3"})
	eq(t, "Disabled", s.Disabled, []string{"N1"})
}

func TestToggle_DisabledIsNoOp(t *testing.T) {
	g, h := fixture(t)
	s := Compute(g, h, []string{"N4"})
	after := Toggle(g, h, s, "N2")
	eq(t, "Selected", after.Selected, s.Selected)
	eq(t, "Terminal", after.Terminal, s.Terminal)
}

func TestToggle_TerminalAncestorOfTerminal(t *testing.T) {
	g, h := fixture(t)
	s := Compute(g, h, []string{"N2"})
	s = Toggle(g, h, s, "N4")
	// N2 is both terminal and implied by N4; it is not disabled.
	eq(t, "Terminal", s.Terminal, []string{"N2", "N4"})
	eq(t, "Disabled", s.Disabled, []string{"N1", "N3"})

	s = Toggle(g, h, s, "N4")
	eq(t, "Selected", s.Selected, []string{"N1", "N2"})
}

func TestCompute_StaleReference(t *testing.T) {
	g, h := fixture(t)
	s := Compute(g, h, []string{"gone", "N2", "N2"})
	eq(t, "Terminal", s.Terminal, []string{"N2"})
	eq(t, "Dropped", s.Dropped, []string{"gone"})
	eq(t, "Selected", s.Selected, []string{"N1", "N2"})
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(dag.New(nil), BuildHierarchy(nil, Changes{}), nil)
	if !s.Empty() || s.Terminal != nil || s.Disabled != nil {
		t.Errorf("Compute(empty) = %+v", s)
	}
	if s := Compute(nil, nil, []string{"x"}); !s.Empty() {
		t.Errorf("Compute(nil, nil) = %+v", s)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	g, h := fixture(t)
	first := Compute(g, h, []string{"N3", "N2"})
	again := Compute(g, h, first.Terminal)
	for i := 0; i < 5; i++ {
		if !slices.Equal(again.Selected, first.Selected) || !slices.Equal(again.Disabled, first.Disabled) {
			t.Fatalf("recompute %d: %+v != %+v", i, again, first)
		}
		again = Compute(g, h, again.Terminal)
	}
}

// Every subset of leaves: implied equals the backward closure.
func TestCompute_ClosureProperty(t *testing.T) {
	g, h := fixture(t)
	ids := h.LeafIDs()
	for mask := 0; mask < 1<<len(ids); mask++ {
		var terminal []string
		for i, id := range ids {
			if mask&(1<<i) != 0 {
				terminal = append(terminal, id)
			}
		}
		s := Compute(g, h, terminal)

		want := map[string]bool{}
		var visit func(id string)
		visit = func(id string) {
			for _, p := range g.Parents(id) {
				if !want[p] {
					want[p] = true
					visit(p)
				}
			}
		}
		for _, id := range terminal {
			visit(id)
		}
		if len(s.Implied) != len(want) {
			t.Fatalf("terminal %v: Implied = %v, want %v", terminal, s.Implied, want)
		}
		for _, id := range s.Implied {
			if !want[id] {
				t.Fatalf("terminal %v: unexpected implied %s", terminal, id)
			}
		}
		for _, id := range s.Disabled {
			if slices.Contains(terminal, id) {
				t.Fatalf("terminal %v: %s both terminal and disabled", terminal, id)
			}
		}
	}
}

func TestApplyChecked(t *testing.T) {
	g, h := fixture(t)
	s := Compute(g, h, nil)

	// Widget reports N4 newly checked.
	s = ApplyChecked(g, h, s, []string{"N4"})
	eq(t, "Terminal", s.Terminal, []string{"N4"})
	eq(t, "Selected", s.Selected, []string{"N1", "N2", "N3", "N4"})

	// Unchecking an implied-only id is ignored.
	s = ApplyChecked(g, h, s, []string{"N1", "N3", "N4"})
	eq(t, "Selected", s.Selected, []string{"N1", "N2", "N3", "N4"})

	// Unchecking the terminal releases everything.
	s = ApplyChecked(g, h, s, []string{"N1", "N2", "N3"})
	if !s.Empty() {
		t.Errorf("Selected = %v, want empty", s.Selected)
	}
}
