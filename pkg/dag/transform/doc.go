// Package transform provides the graph transformations that prepare a
// dependency DAG for layered layout.
//
// # Layering
//
// [AssignLayers] places each node on the layer equal to the length of the
// longest path from any root. Roots are seeded in insertion order, so the
// result is reproducible. A cyclic graph is rejected with a
// [dag.CycleError] rather than silently resolved.
//
// # Edge Subdivision
//
// [Subdivide] breaks long edges (spanning multiple layers) into chains of
// single-layer hops by inserting dummy nodes:
//
//	Before: load (layer 0) ────────────→ report (layer 2)
//	After:  load (layer 0) → dummy (layer 1) → report (layer 2)
//
// Crossing reduction then orders dummies like any other node, and the
// returned [Chain] values give edge routing its control points.
//
// [dag.CycleError]: github.com/matzehuels/blueprint/pkg/dag.CycleError
package transform
