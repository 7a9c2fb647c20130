// Package pipeline assembles the views shown by the CLI and the gateway.
//
// This package implements the fetch → build → layout → annotate pipeline
// shared by every entry point. By centralizing it, the commit graph looks
// the same in the terminal, in rendered files and over the API.
//
// # Architecture
//
// A commit view runs four stages:
//
//  1. Fetch: the commit and its notebooks from the repository service
//  2. Build: the tag-derived dependency graph
//  3. Layout: layered coordinates and routed edges
//  4. Annotate: the notebook tree with the selection applied
//
// An execution view fetches the execution, builds the job graph keyed by
// notebook id, lays it out and projects the job states on top.
//
// Graphs and layouts are cached under content hashes, so an unchanged
// notebook list never rebuilds and an unchanged graph never re-lays out.
//
// # Usage
//
//	runner := pipeline.NewRunner(repos, executions, cache, nil, logger)
//	view, err := runner.CommitView(ctx, "repo", "commit", pipeline.CommitOptions{
//	    Terminal: []string{"N4"},
//	})
//	svg, err := pipeline.Render(ctx, view.Layout, view.Graph, nil, pipeline.RenderOptions{Format: "svg"})
package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/layout"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/projection"
	"github.com/matzehuels/blueprint/pkg/selection"
)

// Repositories is the part of the repository service the pipeline needs.
type Repositories interface {
	Commit(ctx context.Context, repo, commit string, refresh bool) (*model.Commit, error)
	Notebooks(ctx context.Context, repo, commit string, refresh bool) ([]model.Notebook, error)
}

// Executions is the part of the execution service the pipeline needs.
type Executions interface {
	List(ctx context.Context) ([]model.Execution, error)
	Get(ctx context.Context, id string) (*model.Execution, error)
}

// CommitOptions configures CommitView.
//
// The selection starts from Terminal. Checked, when non-nil, replaces the
// leaf selection (the tree widget reports its full checked list); Toggle
// then flips a single id.
type CommitOptions struct {
	Layout   layout.Options
	Terminal []string
	Checked  []string
	Toggle   string
	Refresh  bool
}

// CommitView is everything needed to display one commit.
type CommitView struct {
	Commit    *model.Commit
	Notebooks []model.Notebook
	Graph     *dag.DAG
	Layout    *layout.Layout
	Hierarchy *selection.Hierarchy
	Selection selection.State
	Tree      []*selection.ViewNode
	Expanded  []string
	Stats     Stats
	CacheInfo CacheInfo
}

// ExecutionOptions configures ExecutionView.
type ExecutionOptions struct {
	Layout    layout.Options
	Inspected string
	// Now is the reference for relative times. Zero means time.Now().
	Now time.Time
}

// ExecutionView is everything needed to display one execution snapshot.
type ExecutionView struct {
	Execution  *model.Execution
	Graph      *dag.DAG
	Layout     *layout.Layout
	Projection *projection.Projection
	Stats      Stats
	CacheInfo  CacheInfo
}

// ExecutionSummary is one row of the execution list.
type ExecutionSummary struct {
	Execution model.Execution    `json:"execution"`
	Term      string             `json:"term"`
	Icon      projection.Icon    `json:"icon"`
	Summary   projection.Summary `json:"summary"`
}

// Stats contains timing and size information.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	FetchTime   time.Duration
	BuildTime   time.Duration
	LayoutTime  time.Duration
	ProjectTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	GraphHit  bool
	LayoutHit bool
}
