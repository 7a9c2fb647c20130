package selection

import (
	"strings"

	"github.com/matzehuels/blueprint/pkg/model"
)

// Change marks a notebook as touched by the commit being viewed.
type Change int

const (
	Unchanged Change = iota
	Created
	Updated
)

// Marker returns the label prefix for the change: "*" created, "~" updated.
func (c Change) Marker() string {
	switch c {
	case Created:
		return "*"
	case Updated:
		return "~"
	}
	return ""
}

func (c Change) String() string {
	switch c {
	case Created:
		return "created"
	case Updated:
		return "updated"
	}
	return "unchanged"
}

// Changes holds the notebook ids created and updated by a commit.
type Changes struct {
	Created []string
	Updated []string
}

// ChangesFromCommit collects the created and updated notebook ids of c.
func ChangesFromCommit(c model.Commit) Changes {
	var ch Changes
	for _, nb := range c.Created {
		ch.Created = append(ch.Created, nb.ID)
	}
	for _, nb := range c.Updated {
		ch.Updated = append(ch.Updated, nb.ID)
	}
	return ch
}

func (c Changes) of(id string) Change {
	for _, x := range c.Created {
		if x == id {
			return Created
		}
	}
	for _, x := range c.Updated {
		if x == id {
			return Updated
		}
	}
	return Unchanged
}

// Node is a folder or a notebook leaf of the hierarchy.
//
// Folder values are the full folder path ("a/b"), so they are unique even
// when two folders share a name. Leaf values are notebook ids.
type Node struct {
	Value    string
	Label    string
	Path     string
	Leaf     bool
	Change   Change
	Children []*Node
}

// Changed reports whether the node, or any leaf below a folder, was
// created or updated.
func (n *Node) Changed() bool {
	if n.Leaf {
		return n.Change != Unchanged
	}
	for _, c := range n.Children {
		if c.Changed() {
			return true
		}
	}
	return false
}

// Leaves returns the notebook leaves below n in tree order.
func (n *Node) Leaves() []*Node {
	if n.Leaf {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// Hierarchy is the folder tree of a commit's notebooks.
// It is rebuilt from the notebook list and never persisted.
type Hierarchy struct {
	Roots []*Node

	leaves  map[string]*Node
	parents map[string][]string // leaf id -> enclosing folder values, outermost first
	order   []string
}

// BuildHierarchy splits notebook paths on "/" into a folder tree.
// Folders and leaves appear in first-appearance order. A notebook id that
// occurs twice is kept once, at its first path.
func BuildHierarchy(notebooks []model.Notebook, changes Changes) *Hierarchy {
	h := &Hierarchy{
		leaves:  make(map[string]*Node, len(notebooks)),
		parents: make(map[string][]string, len(notebooks)),
	}
	folders := make(map[string]*Node)

	for _, nb := range notebooks {
		if nb.ID == "" {
			continue
		}
		if _, dup := h.leaves[nb.ID]; dup {
			continue
		}
		segments := strings.Split(strings.Trim(nb.Path, "/"), "/")
		siblings := &h.Roots
		var chain []string
		for i, seg := range segments[:len(segments)-1] {
			value := strings.Join(segments[:i+1], "/")
			folder, ok := folders[value]
			if !ok {
				folder = &Node{Value: value, Label: seg, Path: value}
				folders[value] = folder
				*siblings = append(*siblings, folder)
			}
			chain = append(chain, value)
			siblings = &folder.Children
		}

		label := segments[len(segments)-1]
		if label == "" {
			label = nb.ID
		}
		leaf := &Node{
			Value:  nb.ID,
			Label:  label,
			Path:   nb.Path,
			Leaf:   true,
			Change: changes.of(nb.ID),
		}
		*siblings = append(*siblings, leaf)
		h.leaves[nb.ID] = leaf
		h.parents[nb.ID] = chain
		h.order = append(h.order, nb.ID)
	}
	return h
}

// Has reports whether id is a notebook leaf of the hierarchy.
func (h *Hierarchy) Has(id string) bool {
	if h == nil {
		return false
	}
	_, ok := h.leaves[id]
	return ok
}

// Leaf returns the leaf for a notebook id.
func (h *Hierarchy) Leaf(id string) (*Node, bool) {
	if h == nil {
		return nil, false
	}
	n, ok := h.leaves[id]
	return n, ok
}

// LeafIDs returns every notebook id in tree order.
func (h *Hierarchy) LeafIDs() []string {
	if h == nil {
		return nil
	}
	return append([]string(nil), h.order...)
}

// Folders returns the enclosing folder values of a leaf, outermost first.
func (h *Hierarchy) Folders(id string) []string {
	if h == nil {
		return nil
	}
	return h.parents[id]
}

// Len returns the number of leaves.
func (h *Hierarchy) Len() int {
	if h == nil {
		return 0
	}
	return len(h.order)
}
