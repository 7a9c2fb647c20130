// Package pkg provides the libraries behind blueprint, a tool that shows a
// repository's notebooks as a dependency graph and runs selected parts of
// it.
//
// # Overview
//
// A notebook declares the resource tags it reads (inputs) and writes
// (outputs). Every producer of a tag is a dependency of every consumer of
// it; blueprint derives that graph per commit, lays it out and lets the
// user pick terminal notebooks whose dependencies are selected with them.
// An execution runs the selection; its jobs are projected back onto the
// same graph while it runs.
//
// # Architecture
//
//	repository service            execution service
//	       ↓                             ↓
//	  [integrations]               [integrations]
//	       ↓                             ↓
//	  [depgraph] → [dag] ─────────→ [projection]
//	       ↓               ↘             ↓
//	  [selection]           [layout] → [render]
//	       ↘                  ↓         ↙
//	            [pipeline] ← [cache]
//	                ↓
//	     [server] / internal/cli
//
// The packages:
//
//   - [model]: notebooks, commits, executions, jobs and their statuses
//   - [dag]: the insertion-ordered graph, validation and traversal
//   - [depgraph]: graph builders from notebooks and from jobs
//   - [selection]: terminal/implied propagation and the notebook tree
//   - [layout]: layered coordinates and routed edges
//   - [projection]: execution state overlaid on a graph
//   - [render]: SVG, DOT, PDF and PNG output
//   - [graph]: JSON wire formats of graphs and layouts
//   - [pipeline]: fetch → build → layout → annotate, with caching
//   - [poll]: periodic refetch of execution snapshots
//   - [server]: the HTTP and websocket gateway
//   - [cache], [config], [errors], [observability]: shared infrastructure
//
// # Quick Start
//
//	runner := pipeline.NewRunner(repos, executions, cache.NewNullCache(), nil, logger)
//	view, err := runner.CommitView(ctx, "repo", "commit", pipeline.CommitOptions{
//	    Terminal: []string{"N4"},
//	})
//	svg, err := pipeline.Render(ctx, view.Layout, view.Graph, nil, pipeline.RenderOptions{Format: "svg"})
package pkg
