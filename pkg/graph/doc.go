// Package graph provides serialization types for dependency graphs and layouts.
//
// This package defines the wire format for blueprint's graph data, used for
// JSON files, API responses and cache entries.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - pkg/dag.DAG: Internal graph representation
//   - pkg/layout.Layout: Internal layout (positions, routed edges)
//
// Use [FromDAG]/[ToDAG] and [ExportLayout]/[Layout.Parse] to convert
// between them.
//
// # Graph Format
//
//	{
//	  "nodes": [{"id": "N1", "label": "ingest.ipynb", "kind": "notebook"}],
//	  "edges": [{"from": "N1", "to": "N2", "tags": ["/data/raw"]}]
//	}
//
// Nodes and edges keep insertion order. Node kinds are "notebook", "job"
// (the node carries a job id) and "dummy" (an edge subdivision).
//
// # Layout Format
//
//	{
//	  "direction": "TB",
//	  "nodes": [{"id": "N1", "label": "...", "layer": 0, "order": 0,
//	             "x": 34, "y": 13, "width": 68, "height": 26, "kind": "notebook"}],
//	  "edges": [{"from": "N1", "to": "N2", "points": [...], "path": "M..."}],
//	  "width": 160, "height": 132, "minX": 0, "minY": 0
//	}
//
// Only regular nodes are serialized; dummy nodes survive as interior
// edge points.
//
// # I/O Helpers
//
// [WriteGraphFile], [ReadGraphFile], [WriteLayoutFile] and [ReadLayoutFile]
// handle files. [MarshalGraph], [MarshalLayout] and [UnmarshalLayout] work
// on byte slices for caching.
package graph
