// Package depgraph builds dependency DAGs from notebooks and jobs.
//
// Two kinds of input are supported:
//
//   - Tagged entities (notebooks): an edge producer→consumer is created
//     whenever an output tag of the producer equals an input tag of the
//     consumer. The reserved tags [model.TagStart] and [model.TagEnd] never
//     create edges.
//   - Entities with explicit parents (jobs): an edge is created from each
//     parent id to the entity.
//
// Construction is pure: no I/O, no partial results. A cycle, a dangling
// parent reference or a duplicate identifier fails the whole build with an
// error carrying [errors.ErrCodeGraphIntegrity].
//
// [errors.ErrCodeGraphIntegrity]: github.com/matzehuels/blueprint/pkg/errors.ErrCodeGraphIntegrity
package depgraph

import (
	stderrors "errors"
	"slices"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/model"
)

// Node metadata keys set by the builders.
const (
	MetaPath       = "path"
	MetaNotebookID = "notebook_id"
	MetaJobID      = "job_id"
	MetaStatus     = "status"
)

// Entity is one vertex of the graph to build.
//
// When HasParents is set, Parents are the explicit predecessors and the tag
// fields are ignored; an empty Parents list marks a root. Otherwise edges
// are derived from Inputs and Outputs.
type Entity struct {
	ID    string
	Label string
	Meta  dag.Metadata

	Inputs  []string
	Outputs []string

	Parents    []string
	HasParents bool
}

// Build constructs a DAG from entities. Nodes keep the input order.
//
// Duplicate producer/consumer pairs collapse into a single edge whose Tags
// list every connecting tag in the consumer's input order. Tag comparison
// is exact.
func Build(entities []Entity) (*dag.DAG, error) {
	g := dag.New(nil)
	for _, e := range entities {
		if e.ID == "" {
			return nil, errors.New(errors.ErrCodeGraphIntegrity, "entity with empty id")
		}
		if err := g.AddNode(dag.Node{ID: e.ID, Label: e.Label, Meta: e.Meta}); err != nil {
			if stderrors.Is(err, dag.ErrDuplicateNodeID) {
				return nil, errors.New(errors.ErrCodeGraphIntegrity, "duplicate id %q", e.ID)
			}
			return nil, errors.Wrap(errors.ErrCodeGraphIntegrity, err, "add %q", e.ID)
		}
	}

	producers := producerIndex(entities)
	for _, e := range entities {
		var err error
		if e.HasParents {
			err = linkParents(g, e)
		} else {
			err = linkTags(g, e, producers)
		}
		if err != nil {
			return nil, err
		}
	}

	if cycle := g.FindCycle(); cycle != nil {
		return nil, errors.Wrap(errors.ErrCodeGraphIntegrity, cycle, "dependency cycle")
	}
	return g, nil
}

func linkParents(g *dag.DAG, e Entity) error {
	for _, parent := range e.Parents {
		if parent == e.ID {
			return errors.Wrap(errors.ErrCodeGraphIntegrity,
				&dag.CycleError{Path: []string{e.ID, e.ID}}, "dependency cycle")
		}
		if !g.Has(parent) {
			return errors.New(errors.ErrCodeGraphIntegrity, "%q references unknown parent %q", e.ID, parent)
		}
		if _, exists := g.Edge(parent, e.ID); exists {
			continue
		}
		if err := g.AddEdge(dag.Edge{From: parent, To: e.ID}); err != nil {
			return errors.Wrap(errors.ErrCodeGraphIntegrity, err, "link %q to %q", parent, e.ID)
		}
	}
	return nil
}

func linkTags(g *dag.DAG, e Entity, producers map[string][]string) error {
	type pending struct {
		from string
		tags []string
	}
	var edges []*pending
	byProducer := make(map[string]*pending)

	for _, tag := range e.Inputs {
		if model.IsReservedTag(tag) {
			continue
		}
		for _, from := range producers[tag] {
			if from == e.ID {
				return errors.Wrap(errors.ErrCodeGraphIntegrity,
					&dag.CycleError{Path: []string{e.ID, e.ID}}, "%q consumes its own output %q", e.ID, tag)
			}
			p, ok := byProducer[from]
			if !ok {
				p = &pending{from: from}
				byProducer[from] = p
				edges = append(edges, p)
			}
			if !slices.Contains(p.tags, tag) {
				p.tags = append(p.tags, tag)
			}
		}
	}

	for _, p := range edges {
		if err := g.AddEdge(dag.Edge{From: p.from, To: e.ID, Tags: p.tags}); err != nil {
			return errors.Wrap(errors.ErrCodeGraphIntegrity, err, "link %q to %q", p.from, e.ID)
		}
	}
	return nil
}

// producerIndex maps every non-reserved output tag to the tagged entities
// that produce it, in input order.
func producerIndex(entities []Entity) map[string][]string {
	index := make(map[string][]string)
	for _, e := range entities {
		if e.HasParents {
			continue
		}
		for _, tag := range e.Outputs {
			if model.IsReservedTag(tag) || slices.Contains(index[tag], e.ID) {
				continue
			}
			index[tag] = append(index[tag], e.ID)
		}
	}
	return index
}
