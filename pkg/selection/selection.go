// Package selection propagates notebook selections over the dependency graph.
//
// The user picks terminal notebooks; every notebook they depend on is
// implied and must run as well. Implied-only notebooks are shown checked
// but disabled, so they can only be released by removing every terminal
// that needs them.
//
// All functions are pure: the result depends only on the graph, the
// hierarchy and the terminal set passed in, never on call history.
package selection

import (
	"slices"

	"github.com/matzehuels/blueprint/pkg/dag"
)

// State is a consistent selection.
//
//   - Terminal: ids chosen directly by the user
//   - Implied: every node reachable backwards from a terminal
//   - Selected: Terminal ∪ Implied
//   - Disabled: Implied \ Terminal (checked, not directly uncheckable)
//   - Dropped: requested terminal ids unknown to the hierarchy
//
// Every list is sorted and free of duplicates.
type State struct {
	Terminal []string `json:"terminal"`
	Implied  []string `json:"implied"`
	Selected []string `json:"selected"`
	Disabled []string `json:"disabled"`
	Dropped  []string `json:"dropped,omitempty"`
}

// IsTerminal reports whether id was chosen directly.
func (s State) IsTerminal(id string) bool { return contains(s.Terminal, id) }

// IsSelected reports whether id is terminal or implied.
func (s State) IsSelected(id string) bool { return contains(s.Selected, id) }

// IsDisabled reports whether id is selected only by implication.
func (s State) IsDisabled(id string) bool { return contains(s.Disabled, id) }

// Empty reports whether nothing is selected.
func (s State) Empty() bool { return len(s.Selected) == 0 }

// Compute derives the full selection from a terminal set.
//
// Terminal ids unknown to h are moved to Dropped rather than failing; this
// happens when a stored selection outlives the commit it was made on. When
// h is nil, ids unknown to g are dropped instead. A nil g implies nothing.
func Compute(g *dag.DAG, h *Hierarchy, terminal []string) State {
	var s State
	for _, id := range unique(terminal) {
		if known(g, h, id) {
			s.Terminal = append(s.Terminal, id)
		} else {
			s.Dropped = append(s.Dropped, id)
		}
	}

	if g != nil {
		var start []string
		for _, id := range s.Terminal {
			if g.Has(id) {
				start = append(start, id)
			}
		}
		s.Implied = unique(g.Ancestors(start...))
	}

	s.Selected = unique(append(slices.Clone(s.Terminal), s.Implied...))
	for _, id := range s.Implied {
		if !contains(s.Terminal, id) {
			s.Disabled = append(s.Disabled, id)
		}
	}
	return s
}

// Toggle flips one leaf. A terminal is removed, an implied-only leaf is
// left alone (it is disabled in the view), anything else becomes a new
// terminal. The closure is recomputed, so a dependency still needed by a
// remaining terminal stays selected.
func Toggle(g *dag.DAG, h *Hierarchy, s State, id string) State {
	switch {
	case contains(s.Terminal, id):
		return Compute(g, h, remove(s.Terminal, id))
	case contains(s.Disabled, id):
		return Compute(g, h, s.Terminal)
	default:
		return Compute(g, h, append(slices.Clone(s.Terminal), id))
	}
}

// ApplyChecked reconciles the full checked list reported by a checkbox
// tree widget with the current state. Newly checked ids become terminals,
// unchecked terminals are released, and unchecking an implied-only id is
// ignored.
func ApplyChecked(g *dag.DAG, h *Hierarchy, s State, checked []string) State {
	terminal := slices.Clone(s.Terminal)
	for _, id := range s.Selected {
		if contains(checked, id) {
			continue
		}
		if contains(s.Terminal, id) {
			terminal = remove(terminal, id)
		}
	}
	for _, id := range checked {
		if !contains(s.Selected, id) {
			terminal = append(terminal, id)
		}
	}
	return Compute(g, h, terminal)
}

func known(g *dag.DAG, h *Hierarchy, id string) bool {
	if h != nil {
		return h.Has(id)
	}
	return g != nil && g.Has(id)
}

func unique(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func contains(sorted []string, id string) bool {
	return slices.Contains(sorted, id)
}

func remove(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == id })
}
