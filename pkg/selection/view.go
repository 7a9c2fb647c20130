package selection

// CheckState is the tri-state of a folder checkbox.
type CheckState string

const (
	Unchecked     CheckState = "unchecked"
	Checked       CheckState = "checked"
	Indeterminate CheckState = "indeterminate"
)

// ViewOptions controls Annotate.
type ViewOptions struct {
	// ShowCheckboxes renders leaf checkboxes; folders never get one.
	ShowCheckboxes bool
	// ReadOnly disables every leaf, e.g. once an execution has started.
	ReadOnly bool
}

// ViewNode is a hierarchy node annotated for display.
type ViewNode struct {
	Value        string      `json:"value"`
	Label        string      `json:"label"`
	Path         string      `json:"path"`
	Leaf         bool        `json:"leaf"`
	Change       string      `json:"change,omitempty"`
	Changed      bool        `json:"changed,omitempty"`
	Checked      bool        `json:"checked"`
	Disabled     bool        `json:"disabled"`
	ShowCheckbox bool        `json:"showCheckbox"`
	State        CheckState  `json:"state"`
	Children     []*ViewNode `json:"children,omitempty"`
}

// DisplayLabel returns the label with its change marker.
func (v *ViewNode) DisplayLabel() string {
	switch v.Change {
	case Created.String():
		return Created.Marker() + v.Label
	case Updated.String():
		return Updated.Marker() + v.Label
	}
	return v.Label
}

// Annotate projects a selection onto the hierarchy. The folder state is
// derived from its leaves: Checked when all are selected, Indeterminate
// when some are, Unchecked otherwise.
func Annotate(h *Hierarchy, s State, opts ViewOptions) []*ViewNode {
	if h == nil {
		return nil
	}
	out := make([]*ViewNode, 0, len(h.Roots))
	for _, n := range h.Roots {
		out = append(out, annotate(n, s, opts))
	}
	return out
}

func annotate(n *Node, s State, opts ViewOptions) *ViewNode {
	v := &ViewNode{
		Value:   n.Value,
		Label:   n.Label,
		Path:    n.Path,
		Leaf:    n.Leaf,
		Changed: n.Changed(),
	}
	if n.Leaf {
		if n.Change != Unchanged {
			v.Change = n.Change.String()
		}
		v.Checked = s.IsSelected(n.Value)
		v.Disabled = opts.ReadOnly || s.IsDisabled(n.Value)
		v.ShowCheckbox = opts.ShowCheckboxes
		v.State = Unchecked
		if v.Checked {
			v.State = Checked
		}
		return v
	}

	checked, total := 0, 0
	for _, c := range n.Children {
		child := annotate(c, s, opts)
		v.Children = append(v.Children, child)
	}
	for _, leaf := range n.Leaves() {
		total++
		if s.IsSelected(leaf.Value) {
			checked++
		}
	}
	switch {
	case total > 0 && checked == total:
		v.State = Checked
	case checked > 0:
		v.State = Indeterminate
	default:
		v.State = Unchecked
	}
	v.Checked = v.State == Checked
	v.Disabled = opts.ReadOnly
	return v
}

// Expanded returns the folder values that must be open for every selected
// leaf to be visible, in first-appearance order without duplicates.
func Expanded(h *Hierarchy, s State) []string {
	if h == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, id := range h.order {
		if !s.IsSelected(id) {
			continue
		}
		for _, f := range h.parents[id] {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// Walk calls fn for every node of the annotated tree in depth-first order.
func Walk(nodes []*ViewNode, fn func(n *ViewNode, depth int)) {
	var walk func(ns []*ViewNode, depth int)
	walk = func(ns []*ViewNode, depth int) {
		for _, n := range ns {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
}
