package projection

import (
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/depgraph"
	"github.com/matzehuels/blueprint/pkg/model"
)

var now = time.Unix(1_700_000_000, 0).UTC()

func ago(d time.Duration) *model.UnixTime {
	return model.NewUnixTime(now.Add(-d)).Ptr()
}

func job(id, notebook string, status model.Status, parents ...string) model.Job {
	return model.Job{
		ID:           id,
		Status:       status,
		Notebook:     model.Notebook{ID: notebook, Path: notebook + ".ipynb"},
		PreviousJobs: parents,
	}
}

func diamondExecution(status model.Status) model.Execution {
	j1 := job("j1", "N1", model.StatusDone)
	j1.StartedAt, j1.EndedAt = ago(10*time.Minute), ago(5*time.Minute)
	j2 := job("j2", "N2", model.StatusRunning, "j1")
	j2.StartedAt = ago(3 * time.Minute)
	j3 := job("j3", "N3", model.StatusFailed, "j1")
	j3.StartedAt, j3.EndedAt = ago(4*time.Minute), ago(2*time.Hour)
	msg := "KeyError: 'x'"
	j3.Exception = &msg
	j4 := job("j4", "N4", model.StatusReady, "j2", "j3")

	return model.Execution{
		ID:        "e1",
		CommitID:  "c1",
		Status:    status,
		CreatedAt: model.NewUnixTime(now.Add(-15 * time.Minute)),
		Jobs:      []model.Job{j1, j2, j3, j4},
		EndJobs:   []model.Job{j4},
	}
}

func TestJobTerm(t *testing.T) {
	tests := []struct {
		name string
		job  model.Job
		want string
	}{
		{"ready", model.Job{Status: model.StatusReady}, "waiting for parents"},
		{"running", model.Job{Status: model.StatusRunning, StartedAt: ago(3 * time.Minute)}, "started 3 minutes ago"},
		{"running without start", model.Job{Status: model.StatusRunning}, "started"},
		{"done", model.Job{Status: model.StatusDone, StartedAt: ago(time.Hour), EndedAt: ago(2 * time.Hour)}, "done 2 hours ago"},
		{"failed falls back to start", model.Job{Status: model.StatusFailed, StartedAt: ago(90 * time.Second)}, "failed 1 minute ago"},
		{"cancelled", model.Job{Status: model.StatusCancelled, EndedAt: ago(0)}, "cancelled now"},
		{"unknown", model.Job{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JobTerm(tt.job, now); got != tt.want {
				t.Errorf("JobTerm() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecutionTerm(t *testing.T) {
	created := model.NewUnixTime(now.Add(-2 * time.Hour))
	tests := []struct {
		status model.Status
		want   string
	}{
		{model.StatusReady, "created 2 hours ago"},
		{model.StatusRunning, "started 2 hours ago"},
		{model.StatusDone, "done 2 hours ago"},
		{model.StatusFailed, "failed 2 hours ago"},
		{model.StatusCancelled, "cancelled 2 hours ago"},
	}
	for _, tt := range tests {
		e := model.Execution{Status: tt.status, CreatedAt: created}
		if got := ExecutionTerm(e, now); got != tt.want {
			t.Errorf("ExecutionTerm(%s) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestProject_NotebookKeyedGraph(t *testing.T) {
	exec := diamondExecution(model.StatusRunning)
	g, err := depgraph.FromJobsByNotebook(exec.Jobs)
	if err != nil {
		t.Fatalf("FromJobsByNotebook: %v", err)
	}

	p := Project(g, exec, Options{Now: now, Inspected: "j3"})

	want := map[string]struct {
		status model.Status
		icon   Icon
		term   string
	}{
		"N1": {model.StatusDone, IconCheck, "done 5 minutes ago"},
		"N2": {model.StatusRunning, IconSync, "started 3 minutes ago"},
		"N3": {model.StatusFailed, IconWarning, "failed 2 hours ago"},
		"N4": {model.StatusReady, IconTime, "waiting for parents"},
	}
	if len(p.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(p.Nodes))
	}
	for id, w := range want {
		n, ok := p.Node(id)
		if !ok {
			t.Fatalf("node %s missing", id)
		}
		if !n.HasStatus() || *n.Status != w.status || n.Icon != w.icon || n.Term != w.term {
			t.Errorf("%s = %v %s %q, want %s %s %q", id, n.Status, n.Icon, n.Term, w.status, w.icon, w.term)
		}
		if !n.Checked || !n.Disabled {
			t.Errorf("%s checked=%v disabled=%v, want both (running is read-only)", id, n.Checked, n.Disabled)
		}
		if n.Highlighted != (id == "N3") {
			t.Errorf("%s highlighted = %v", id, n.Highlighted)
		}
	}
	if n, _ := p.Node("N3"); n.Exception != "KeyError: 'x'" || n.JobID != "j3" {
		t.Errorf("N3 = %+v", n)
	}
	if !slices.Equal(p.Selection.Terminal, []string{"N4"}) {
		t.Errorf("terminal = %v", p.Selection.Terminal)
	}
	if !p.ReadOnly || p.CanStart || !p.CanCancel {
		t.Errorf("flags readOnly=%v canStart=%v canCancel=%v", p.ReadOnly, p.CanStart, p.CanCancel)
	}
	if !p.Active() {
		t.Error("Active() = false, want true")
	}
	if p.Summary != (Summary{Total: 4, Ready: 1, Running: 1, Done: 1, Failed: 1}) {
		t.Errorf("summary = %+v", p.Summary)
	}
}

func TestProject_JobKeyedGraph(t *testing.T) {
	exec := diamondExecution(model.StatusReady)
	g, err := depgraph.FromJobs(exec.Jobs)
	if err != nil {
		t.Fatalf("FromJobs: %v", err)
	}
	p := Project(g, exec, Options{Now: now})

	n, ok := p.Node("j2")
	if !ok || n.NotebookID != "N2" || *n.Status != model.StatusRunning {
		t.Errorf("j2 = %+v", n)
	}
	if !slices.Equal(p.Selection.Terminal, []string{"j4"}) {
		t.Errorf("terminal = %v", p.Selection.Terminal)
	}
	// Ready executions are editable: the terminal is enabled, its
	// dependencies are disabled by implication.
	if n, _ := p.Node("j4"); !n.Checked || n.Disabled {
		t.Errorf("j4 checked=%v disabled=%v", n.Checked, n.Disabled)
	}
	if n, _ := p.Node("j1"); !n.Checked || !n.Disabled {
		t.Errorf("j1 checked=%v disabled=%v", n.Checked, n.Disabled)
	}
	if p.ReadOnly || !p.CanStart || p.CanCancel || p.Active() {
		t.Errorf("flags readOnly=%v canStart=%v canCancel=%v active=%v", p.ReadOnly, p.CanStart, p.CanCancel, p.Active())
	}
}

func TestProject_PartialJobs(t *testing.T) {
	notebooks := []model.Notebook{
		{ID: "N1", Outputs: []string{"/A"}},
		{ID: "N2", Inputs: []string{"/A"}},
		{ID: "N3"},
	}
	g, err := depgraph.FromNotebooks(notebooks)
	if err != nil {
		t.Fatal(err)
	}
	exec := model.Execution{
		ID:     "e",
		Status: model.StatusRunning,
		Jobs:   []model.Job{job("j1", "N1", model.StatusRunning)},
	}
	p := Project(g, exec, Options{Now: now, Inspected: "missing"})

	if n, _ := p.Node("N1"); !n.HasStatus() {
		t.Error("N1 has no status")
	}
	for _, id := range []string{"N2", "N3"} {
		n, ok := p.Node(id)
		if !ok {
			t.Fatalf("%s missing", id)
		}
		if n.HasStatus() || n.Icon != "" || n.Term != "" || n.Highlighted {
			t.Errorf("%s has overlay: %+v", id, n)
		}
	}
}

func TestProject_Empty(t *testing.T) {
	p := Project(dag.New(nil), model.Execution{Status: model.StatusReady}, Options{Now: now})
	if len(p.Nodes) != 0 || !p.Selection.Empty() || p.CanStart {
		t.Errorf("Project(empty) = %+v", p)
	}
	if p := Project(nil, model.Execution{}, Options{}); p.Nodes != nil {
		t.Errorf("Project(nil) nodes = %v", p.Nodes)
	}
	if _, ok := (*Projection)(nil).Node("x"); ok {
		t.Error("nil projection found a node")
	}
}

func TestProject_DoesNotMutateGraph(t *testing.T) {
	exec := diamondExecution(model.StatusRunning)
	g, err := depgraph.FromJobsByNotebook(exec.Jobs)
	if err != nil {
		t.Fatal(err)
	}
	before := g.NodeIDs()
	edges := g.EdgeCount()
	Project(g, exec, Options{Now: now, Inspected: "j1"})
	if !slices.Equal(g.NodeIDs(), before) || g.EdgeCount() != edges {
		t.Error("Project mutated the graph")
	}
}

func TestSummary(t *testing.T) {
	jobs := []model.Job{
		{Status: model.StatusDone},
		{Status: model.StatusCancelled},
		{Status: model.StatusFailed},
	}
	s := Summarize(jobs)
	if !s.Finished() {
		t.Errorf("Finished() = false for %+v", s)
	}
	if Summarize(nil).Finished() {
		t.Error("empty summary reports finished")
	}
	if IconFor(model.StatusCancelled) != IconFor(model.StatusFailed) {
		t.Error("cancelled and failed icons differ")
	}
	if IconFor("bogus").Glyph() != " " {
		t.Error("unknown icon glyph not blank")
	}
}
