package transform

import "github.com/matzehuels/blueprint/pkg/dag"

// AssignLayers assigns every node a layer equal to the length of the
// longest path from any root to that node.
//
// AssignLayers uses Kahn's algorithm seeded with the roots in insertion
// order. Each node is placed at one plus the maximum layer of any of its
// parents, ensuring that:
//   - Source nodes (no incoming edges) are at layer 0
//   - Every edge points from a strictly lower to a strictly higher layer
//
// Existing layer assignments are overwritten.
//
// # Cycles
//
// Nodes on a cycle never reach in-degree zero. AssignLayers detects this
// and returns the [dag.CycleError] instead of leaving them at layer 0; the
// graph is not modified in that case.
//
// # Performance
//
// Time complexity is O(V + E). Space complexity is O(V).
func AssignLayers(g *dag.DAG) error {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	layers := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
			layers[n.ID] = 0
		}
	}

	visited := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		visited++

		for _, child := range g.Children(curr) {
			if layer := layers[curr] + 1; layer > layers[child] {
				layers[child] = layer
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if visited != len(nodes) {
		if cycle := g.FindCycle(); cycle != nil {
			return cycle
		}
		return dag.ErrGraphHasCycle
	}
	g.SetLayers(layers)
	return nil
}
