package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/depgraph"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/layout"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/observability"
	"github.com/matzehuels/blueprint/pkg/projection"
	"github.com/matzehuels/blueprint/pkg/selection"
)

// Graph sources reported to the pipeline hooks.
const (
	SourceNotebooks = "notebooks"
	SourceJobs      = "jobs"
)

// Runner encapsulates view assembly with caching.
// Both CLI and gateway use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its clients, cache and logger. Multiple
// goroutines can safely use the same Runner.
type Runner struct {
	Repos      Repositories
	Executions Executions
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(repos Repositories, execs Executions, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Repos:      repos,
		Executions: execs,
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
	}
}

// CommitView fetches a commit and its notebooks and assembles the graph,
// layout, notebook tree and selection.
func (r *Runner) CommitView(ctx context.Context, repo, commit string, opts CommitOptions) (*CommitView, error) {
	if r.Repos == nil {
		return nil, errors.New(errors.ErrCodeInternal, "runner has no repository client")
	}
	view := &CommitView{}

	fetchStart := time.Now()
	c, err := r.Repos.Commit(ctx, repo, commit, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("fetch commit: %w", err)
	}
	notebooks, err := r.Repos.Notebooks(ctx, repo, commit, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("fetch notebooks: %w", err)
	}
	view.Commit, view.Notebooks = c, notebooks
	view.Stats.FetchTime = time.Since(fetchStart)

	buildStart := time.Now()
	g, hit, err := r.BuildGraph(ctx, SourceNotebooks, notebooks, func() (*dag.DAG, error) {
		return depgraph.FromNotebooks(notebooks)
	})
	if err != nil {
		return nil, err
	}
	view.Graph = g
	view.CacheInfo.GraphHit = hit
	view.Stats.BuildTime = time.Since(buildStart)
	view.Stats.NodeCount, view.Stats.EdgeCount = g.NodeCount(), g.EdgeCount()

	layoutStart := time.Now()
	l, hit, err := r.Layout(ctx, g, opts.Layout)
	if err != nil {
		return nil, err
	}
	view.Layout = l
	view.CacheInfo.LayoutHit = hit
	view.Stats.LayoutTime = time.Since(layoutStart)

	view.Hierarchy = selection.BuildHierarchy(notebooks, selection.ChangesFromCommit(*c))
	view.Selection = Select(g, view.Hierarchy, opts.Terminal, opts.Checked, opts.Toggle)
	view.Tree = selection.Annotate(view.Hierarchy, view.Selection, selection.ViewOptions{ShowCheckboxes: true})
	view.Expanded = selection.Expanded(view.Hierarchy, view.Selection)

	r.Logger.Info("assembled commit view",
		"commit", model.ShortID(commit),
		"notebooks", len(notebooks),
		"edges", g.EdgeCount(),
		"selected", len(view.Selection.Selected),
		"graph_cached", view.CacheInfo.GraphHit,
		"layout_cached", view.CacheInfo.LayoutHit)
	return view, nil
}

// Select derives a selection from a terminal set, then applies a full
// checked list (when non-nil) and a single toggle (when non-empty).
func Select(g *dag.DAG, h *selection.Hierarchy, terminal, checked []string, toggle string) selection.State {
	s := selection.Compute(g, h, terminal)
	if checked != nil {
		s = selection.ApplyChecked(g, h, s, checked)
	}
	if toggle != "" {
		s = selection.Toggle(g, h, s, toggle)
	}
	return s
}

// ExecutionView fetches an execution snapshot and projects it onto its job
// graph. The graph is keyed by notebook id so it shares ids with the commit
// view.
func (r *Runner) ExecutionView(ctx context.Context, id string, opts ExecutionOptions) (*ExecutionView, error) {
	if r.Executions == nil {
		return nil, errors.New(errors.ErrCodeInternal, "runner has no execution client")
	}
	view := &ExecutionView{}

	fetchStart := time.Now()
	exec, err := r.Executions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch execution: %w", err)
	}
	view.Execution = exec
	view.Stats.FetchTime = time.Since(fetchStart)

	buildStart := time.Now()
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, SourceJobs)
	g, err := depgraph.FromJobsByNotebook(exec.Jobs)
	view.Stats.BuildTime = time.Since(buildStart)
	if err != nil {
		hooks.OnBuildComplete(ctx, SourceJobs, 0, view.Stats.BuildTime, err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, SourceJobs, g.NodeCount(), view.Stats.BuildTime, nil)
	view.Graph = g
	view.Stats.NodeCount, view.Stats.EdgeCount = g.NodeCount(), g.EdgeCount()

	layoutStart := time.Now()
	l, hit, err := r.Layout(ctx, g, opts.Layout)
	if err != nil {
		return nil, err
	}
	view.Layout = l
	view.CacheInfo.LayoutHit = hit
	view.Stats.LayoutTime = time.Since(layoutStart)

	view.Projection = r.Project(ctx, g, *exec, projection.Options{Now: opts.Now, Inspected: opts.Inspected})
	r.Logger.Debug("assembled execution view",
		"execution", exec.ID,
		"status", exec.Status,
		"jobs", len(exec.Jobs),
		"layout_cached", hit)
	return view, nil
}

// Project runs projection.Project and reports it to the pipeline hooks.
func (r *Runner) Project(ctx context.Context, g *dag.DAG, exec model.Execution, opts projection.Options) *projection.Projection {
	start := time.Now()
	p := projection.Project(g, exec, opts)
	observability.Pipeline().OnProject(ctx, exec.ID, time.Since(start))
	return p
}

// ListExecutions returns every execution with its list term and icon.
func (r *Runner) ListExecutions(ctx context.Context, now time.Time) ([]ExecutionSummary, error) {
	if r.Executions == nil {
		return nil, errors.New(errors.ErrCodeInternal, "runner has no execution client")
	}
	if now.IsZero() {
		now = time.Now()
	}
	execs, err := r.Executions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	out := make([]ExecutionSummary, 0, len(execs))
	for _, e := range execs {
		out = append(out, ExecutionSummary{
			Execution: e,
			Term:      projection.ExecutionTerm(e, now),
			Icon:      projection.IconFor(e.Status),
			Summary:   projection.Summarize(e.Jobs),
		})
	}
	return out, nil
}

// BuildGraph returns the graph built from content, consulting the cache
// under the content hash first. build runs on a miss; its result is cached.
func (r *Runner) BuildGraph(ctx context.Context, source string, content any, build func() (*dag.DAG, error)) (*dag.DAG, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, source)
	start := time.Now()

	contentHash, err := cache.HashJSON(content)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash %s", source)
	}
	key := r.Keyer.GraphKey(contentHash)

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if g, err := graph.ReadGraph(bytes.NewReader(data)); err == nil {
			observability.Cache().OnCacheHit(ctx, "graph")
			hooks.OnBuildComplete(ctx, source, g.NodeCount(), time.Since(start), nil)
			return g, true, nil
		}
		r.Logger.Warn("discarding unreadable cached graph", "key", key)
	}
	observability.Cache().OnCacheMiss(ctx, "graph")

	g, err := build()
	if err != nil {
		hooks.OnBuildComplete(ctx, source, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnBuildComplete(ctx, source, g.NodeCount(), time.Since(start), nil)

	if data, err := graph.MarshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLCommit); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}
	return g, false, nil
}

// Layout computes the layout of g, consulting the cache first. The cache
// key covers the graph structure (ids, labels, edges) and the geometry
// options; node metadata is not part of it, so a job graph whose statuses
// changed reuses its layout. Metadata is refreshed from g on a hit.
func (r *Runner) Layout(ctx context.Context, g *dag.DAG, opts layout.Options) (*layout.Layout, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount())
	start := time.Now()

	structure, err := StructureHash(g)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash graph")
	}
	key := r.Keyer.LayoutKey(structure, opts.CacheKey())

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if l, err := graph.UnmarshalLayout(data); err == nil {
			refreshMeta(l, g)
			observability.Cache().OnCacheHit(ctx, "layout")
			hooks.OnLayoutComplete(ctx, l.Crossings, time.Since(start), nil)
			return l, true, nil
		}
		r.Logger.Warn("discarding unreadable cached layout", "key", key)
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	l, err := layout.Compute(g, opts)
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnLayoutComplete(ctx, l.Crossings, time.Since(start), nil)
	r.Logger.Debug("computed layout",
		"nodes", len(l.Nodes),
		"layers", len(l.Layers),
		"crossings", l.Crossings,
		"duration", time.Since(start))

	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, false, nil
}

// StructureHash hashes the parts of g that affect its layout: node ids and
// labels in insertion order, and edges with their tags.
func StructureHash(g *dag.DAG) (string, error) {
	type node struct{ ID, Label string }
	s := struct {
		Nodes []node
		Edges []graph.Edge
	}{}
	for _, n := range g.Nodes() {
		s.Nodes = append(s.Nodes, node{n.ID, n.Label})
	}
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, graph.Edge{From: e.From, To: e.To, Tags: e.Tags})
	}
	return cache.HashJSON(s)
}

func refreshMeta(l *layout.Layout, g *dag.DAG) {
	for i := range l.Nodes {
		if n, ok := g.Node(l.Nodes[i].ID); ok {
			l.Nodes[i].Meta = n.Meta
		}
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// StopWatching reports whether a failed execution view should end a watch
// instead of being retried on the next poll. Integrity failures repeat
// until the backend data changes, and a missing execution never appears.
func StopWatching(err error) bool {
	return errors.IsGraphIntegrity(err) || errors.Is(err, errors.ErrCodeNotFound)
}
