package layout

import (
	"slices"

	"github.com/matzehuels/blueprint/pkg/dag"
)

// DefaultMaxSweeps caps the number of median sweeps.
const DefaultMaxSweeps = 24

// Orderer arranges the nodes of each layer from left to right.
// The graph must be layered and subdivided; layers[i] lists layer i.
type Orderer interface {
	Order(g *dag.DAG) [][]string
}

// MedianOrderer implements the classic layered crossing reduction: the
// initial order is insertion order, then alternating down and up sweeps
// sort each layer by the median position of its neighbours in the adjacent
// layer, and a transpose pass swaps adjacent nodes while that reduces
// crossings. The best ordering seen is returned.
//
// Sweeping stops after MaxSweeps sweeps, when no crossings remain, or when
// a down/up pair brings no improvement. Ties keep the current relative
// order, so the result depends only on the input order.
type MedianOrderer struct {
	MaxSweeps int
	// Mean sorts by the barycenter (mean neighbour position) instead of the median.
	Mean bool
}

// Order implements Orderer.
func (o MedianOrderer) Order(g *dag.DAG) [][]string {
	layers := initialLayers(g)
	if len(layers) == 0 {
		return nil
	}
	maxSweeps := o.MaxSweeps
	if maxSweeps <= 0 {
		maxSweeps = DefaultMaxSweeps
	}

	best := cloneLayers(layers)
	bestCrossings := dag.CountCrossings(g, layers)
	stale := 0

	for sweep := 0; sweep < maxSweeps && bestCrossings > 0; sweep++ {
		down := sweep%2 == 0
		if down {
			for l := 1; l < len(layers); l++ {
				o.sortLayer(g, layers[l], layers[l-1], true)
			}
		} else {
			for l := len(layers) - 2; l >= 0; l-- {
				o.sortLayer(g, layers[l], layers[l+1], false)
			}
		}
		transpose(g, layers)

		if c := dag.CountCrossings(g, layers); c < bestCrossings {
			best, bestCrossings = cloneLayers(layers), c
			stale = 0
			continue
		}
		stale++
		if stale >= 2 {
			break
		}
	}
	return best
}

func initialLayers(g *dag.DAG) [][]string {
	if g.NodeCount() == 0 {
		return nil
	}
	layers := make([][]string, g.MaxLayer()+1)
	for _, n := range g.Nodes() {
		layers[n.Layer] = append(layers[n.Layer], n.ID)
	}
	return layers
}

// sortLayer reorders layer in place by the median (or mean) position of each
// node's neighbours in adj. Nodes without neighbours in adj keep their
// current index as key.
func (o MedianOrderer) sortLayer(g *dag.DAG, layer, adj []string, useParents bool) {
	adjPos := dag.PosMap(adj)
	keys := make(map[string]float64, len(layer))
	for i, id := range layer {
		var nbrs []string
		if useParents {
			nbrs = g.Parents(id)
		} else {
			nbrs = g.Children(id)
		}
		positions := make([]int, 0, len(nbrs))
		for _, n := range nbrs {
			if p, ok := adjPos[n]; ok {
				positions = append(positions, p)
			}
		}
		switch {
		case len(positions) == 0:
			keys[id] = float64(i)
		case o.Mean:
			keys[id] = mean(positions)
		default:
			keys[id] = median(positions)
		}
	}
	slices.SortStableFunc(layer, func(a, b string) int {
		switch ka, kb := keys[a], keys[b]; {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})
}

func median(positions []int) float64 {
	slices.Sort(positions)
	m := len(positions) / 2
	if len(positions)%2 == 1 {
		return float64(positions[m])
	}
	return float64(positions[m-1]+positions[m]) / 2
}

func mean(positions []int) float64 {
	sum := 0
	for _, p := range positions {
		sum += p
	}
	return float64(sum) / float64(len(positions))
}

// transpose swaps adjacent nodes in every layer while the swap strictly
// reduces the crossings with both neighbouring layers.
func transpose(g *dag.DAG, layers [][]string) {
	for l, layer := range layers {
		var upPos, downPos map[string]int
		if l > 0 {
			upPos = dag.PosMap(layers[l-1])
		}
		if l+1 < len(layers) {
			downPos = dag.PosMap(layers[l+1])
		}
		for pass := 0; pass < len(layer); pass++ {
			improved := false
			for i := 0; i+1 < len(layer); i++ {
				v, w := layer[i], layer[i+1]
				if pairCrossings(g, w, v, upPos, downPos) < pairCrossings(g, v, w, upPos, downPos) {
					layer[i], layer[i+1] = w, v
					improved = true
				}
			}
			if !improved {
				break
			}
		}
	}
}

func pairCrossings(g *dag.DAG, left, right string, upPos, downPos map[string]int) int {
	c := 0
	if upPos != nil {
		c += dag.CountPairCrossings(g, left, right, upPos, true)
	}
	if downPos != nil {
		c += dag.CountPairCrossings(g, left, right, downPos, false)
	}
	return c
}

func cloneLayers(layers [][]string) [][]string {
	c := make([][]string, len(layers))
	for i, l := range layers {
		c[i] = slices.Clone(l)
	}
	return c
}
