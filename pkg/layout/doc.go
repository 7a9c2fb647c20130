// Package layout computes deterministic layered drawings of dependency DAGs.
//
// # Pipeline
//
// [Compute] runs the classic layered ("Sugiyama") stages on a copy of the
// input graph:
//
//  1. Layering: longest path from any root (transform.AssignLayers)
//  2. Subdivision: long edges become chains of dummy nodes
//  3. Crossing reduction: [MedianOrderer] sweeps plus transpose
//  4. Coordinates: fixed node and layer pitch, layers centred on the widest
//  5. Edge routing: Catmull-Rom splines through the chain ([SVGPath])
//
// Given the same graph (same insertion order) and the same [Options], the
// result is bit-for-bit identical: no stage iterates a map to decide
// anything, and ties are always broken by the current position.
//
// # Highlighting
//
// [Layout.Boxes] returns drawable rectangles with one node optionally
// thickened. It is an overlay on a finished layout, so highlighting a job
// never moves any other node.
//
// # Geometry
//
// The default box is 68×26 with 24 units between neighbours and 80 units
// between layers. In a top-down layout the first node of the widest layer
// has its centre on the origin; a single-node graph is drawn at (0,0).
package layout
