// Package projection overlays live execution state onto a dependency graph.
//
// A projection is recomputed from scratch for every polled snapshot. It
// never mutates the graph: layout and ordering stay fixed while statuses,
// checkbox state and the inspected-job highlight change around them.
//
// Nodes are matched to jobs by job id first and by notebook id second, so
// both job-keyed graphs (depgraph.FromJobs) and notebook-keyed graphs
// (depgraph.FromNotebooks, depgraph.FromJobsByNotebook) project. Nodes
// without a job carry no overlay; a partial job list is not an error.
package projection

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/selection"
)

// Options controls Project.
type Options struct {
	// Now is the reference for relative times. Zero means time.Now().
	Now time.Time
	// Inspected is the job (or node) id whose details are open.
	Inspected string
	// Hierarchy, when set, must be keyed like the graph. Terminal ids it
	// does not know are dropped from the selection.
	Hierarchy *selection.Hierarchy
}

// Node is the overlay of a single graph node.
type Node struct {
	ID          string          `json:"id"`
	JobID       string          `json:"jobId,omitempty"`
	NotebookID  string          `json:"notebookId,omitempty"`
	Status      *model.Status   `json:"status"`
	Icon        Icon            `json:"icon,omitempty"`
	Term        string          `json:"term,omitempty"`
	StartedAt   *model.UnixTime `json:"startedAt,omitempty"`
	EndedAt     *model.UnixTime `json:"endedAt,omitempty"`
	Exception   string          `json:"exception,omitempty"`
	Highlighted bool            `json:"highlighted"`
	Checked     bool            `json:"checked"`
	Disabled    bool            `json:"disabled"`
}

// HasStatus reports whether a job was found for the node.
func (n Node) HasStatus() bool { return n.Status != nil }

// Projection is the annotated view of one execution snapshot.
type Projection struct {
	ExecutionID string          `json:"executionId"`
	Status      model.Status    `json:"status"`
	Term        string          `json:"term"`
	Icon        Icon            `json:"icon"`
	ReadOnly    bool            `json:"readOnly"`
	CanStart    bool            `json:"canStart"`
	CanCancel   bool            `json:"canCancel"`
	Inspected   string          `json:"inspected,omitempty"`
	Nodes       []Node          `json:"nodes"`
	Selection   selection.State `json:"selection"`
	Summary     Summary         `json:"summary"`

	index map[string]int
}

// Node returns the overlay of a graph node.
func (p *Projection) Node(id string) (Node, bool) {
	if p == nil {
		return Node{}, false
	}
	if p.index == nil {
		p.index = make(map[string]int, len(p.Nodes))
		for i, n := range p.Nodes {
			p.index[n.ID] = i
		}
	}
	i, ok := p.index[id]
	if !ok {
		return Node{}, false
	}
	return p.Nodes[i], true
}

// Active reports whether the execution is running with work left.
func (p *Projection) Active() bool {
	if p == nil || p.Status != model.StatusRunning {
		return false
	}
	return p.Summary.Ready+p.Summary.Running > 0
}

// Project annotates g with the state of exec. Nodes appear in graph order.
// An empty graph or an execution without jobs yields a projection with no
// overlays.
func Project(g *dag.DAG, exec model.Execution, opts Options) *Projection {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	p := &Projection{
		ExecutionID: exec.ID,
		Status:      exec.Status,
		Term:        ExecutionTerm(exec, now),
		Icon:        IconFor(exec.Status),
		ReadOnly:    !exec.Editable(),
		CanStart:    exec.CanStart(),
		CanCancel:   exec.CanCancel(),
		Inspected:   opts.Inspected,
		Summary:     Summarize(exec.Jobs),
	}
	if g == nil {
		return p
	}

	jobs := newJobIndex(exec)

	var terminal []string
	for _, j := range exec.EndJobs {
		switch {
		case g.Has(j.ID):
			terminal = append(terminal, j.ID)
		case g.Has(j.Notebook.ID):
			terminal = append(terminal, j.Notebook.ID)
		}
	}
	p.Selection = selection.Compute(g, opts.Hierarchy, terminal)

	highlighted := false
	p.Nodes = make([]Node, 0, g.NodeCount())
	for _, gn := range g.Nodes() {
		if gn.IsDummy() {
			continue
		}
		n := Node{
			ID:       gn.ID,
			Checked:  p.Selection.IsSelected(gn.ID),
			Disabled: p.ReadOnly || p.Selection.IsDisabled(gn.ID),
		}
		if j, ok := jobs.lookup(gn.ID); ok {
			status := j.Status
			n.JobID = j.ID
			n.NotebookID = j.Notebook.ID
			n.Status = &status
			n.Icon = IconFor(status)
			n.Term = JobTerm(j, now)
			n.StartedAt = j.StartedAt
			n.EndedAt = j.EndedAt
			if j.Exception != nil {
				n.Exception = *j.Exception
			}
		}
		if !highlighted && opts.Inspected != "" &&
			(opts.Inspected == n.ID || opts.Inspected == n.JobID) {
			n.Highlighted = true
			highlighted = true
		}
		p.Nodes = append(p.Nodes, n)
	}
	return p
}

type jobIndex struct {
	byID       map[string]model.Job
	byNotebook map[string]model.Job
}

func newJobIndex(exec model.Execution) jobIndex {
	idx := jobIndex{
		byID:       make(map[string]model.Job, len(exec.Jobs)),
		byNotebook: make(map[string]model.Job, len(exec.Jobs)),
	}
	add := func(j model.Job) {
		if _, ok := idx.byID[j.ID]; ok {
			return
		}
		idx.byID[j.ID] = j
		if _, ok := idx.byNotebook[j.Notebook.ID]; !ok && j.Notebook.ID != "" {
			idx.byNotebook[j.Notebook.ID] = j
		}
	}
	for _, j := range exec.Jobs {
		add(j)
	}
	for _, j := range exec.EndJobs {
		add(j)
	}
	return idx
}

func (idx jobIndex) lookup(id string) (model.Job, bool) {
	if j, ok := idx.byID[id]; ok {
		return j, true
	}
	j, ok := idx.byNotebook[id]
	return j, ok
}

// JobTerm returns the status phrase of a job, e.g. "done 3 minutes ago".
// Running jobs are timed from their start, finished jobs from their end
// (falling back to the start). A missing timestamp drops the relative part.
func JobTerm(j model.Job, now time.Time) string {
	switch j.Status {
	case model.StatusReady:
		return "waiting for parents"
	case model.StatusRunning:
		return withRelative("started", j.Started(), now)
	case model.StatusDone, model.StatusFailed, model.StatusCancelled:
		at := j.Ended()
		if at.IsZero() {
			at = j.Started()
		}
		return withRelative(finishedVerb(j.Status), at, now)
	}
	return ""
}

// ExecutionTerm returns the list phrase of an execution, e.g.
// "created 2 hours ago". Times are relative to the creation time.
func ExecutionTerm(e model.Execution, now time.Time) string {
	var verb string
	switch e.Status {
	case model.StatusReady:
		verb = "created"
	case model.StatusRunning:
		verb = "started"
	case model.StatusDone, model.StatusFailed, model.StatusCancelled:
		verb = finishedVerb(e.Status)
	default:
		return ""
	}
	return withRelative(verb, e.CreatedAt, now)
}

func finishedVerb(s model.Status) string {
	switch s {
	case model.StatusDone:
		return "done"
	case model.StatusFailed:
		return "failed"
	}
	return "cancelled"
}

func withRelative(verb string, at model.UnixTime, now time.Time) string {
	if at.IsZero() {
		return verb
	}
	return verb + " " + humanize.RelTime(at.Time, now, "ago", "from now")
}
