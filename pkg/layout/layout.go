package layout

import (
	stderrors "errors"
	"fmt"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/dag/transform"
	"github.com/matzehuels/blueprint/pkg/errors"
)

// Direction selects the axis along which layers advance.
type Direction string

const (
	// TopDown stacks layers vertically, roots at the top.
	TopDown Direction = "TB"
	// LeftRight stacks layers horizontally, roots on the left.
	LeftRight Direction = "LR"
)

// ParseDirection accepts "TB"/"LR" as well as the long forms
// "top-down"/"left-right". An empty string yields TopDown.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "TB", "tb", "top-down":
		return TopDown, nil
	case "LR", "lr", "left-right":
		return LeftRight, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown layout direction %q", s)
}

// Default geometry, in user units.
const (
	DefaultNodeWidth    = 68.0
	DefaultNodeHeight   = 26.0
	DefaultNodeSpacing  = 24.0
	DefaultLayerSpacing = 80.0
)

// Options configures Compute. Zero fields take their defaults.
type Options struct {
	Direction    Direction
	NodeWidth    float64
	NodeHeight   float64
	NodeSpacing  float64 // gap between neighbours in a layer
	LayerSpacing float64 // gap between consecutive layers
	MaxSweeps    int

	// Orderer overrides the crossing reduction; nil uses MedianOrderer.
	Orderer Orderer
}

// WithDefaults returns a copy of o with zero or negative fields replaced.
func (o Options) WithDefaults() Options {
	if o.Direction == "" {
		o.Direction = TopDown
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.NodeSpacing <= 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.LayerSpacing <= 0 {
		o.LayerSpacing = DefaultLayerSpacing
	}
	if o.MaxSweeps <= 0 {
		o.MaxSweeps = DefaultMaxSweeps
	}
	if o.Orderer == nil {
		o.Orderer = MedianOrderer{MaxSweeps: o.MaxSweeps}
	}
	return o
}

// CacheKey identifies the geometry-affecting options.
func (o Options) CacheKey() string {
	o = o.WithDefaults()
	return fmt.Sprintf("%s:%g:%g:%g:%g:%d:%#v", o.Direction, o.NodeWidth, o.NodeHeight,
		o.NodeSpacing, o.LayerSpacing, o.MaxSweeps, o.Orderer)
}

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeLayout is a positioned node. X and Y are the centre of its box.
type NodeLayout struct {
	ID     string
	Label  string
	Layer  int
	Order  int
	X, Y   float64
	Width  float64
	Height float64
	Meta   dag.Metadata
}

// EdgeLayout is a routed edge. Points are the spline control points: the
// source centre, the centre of every dummy node on the edge, and the
// target centre. Path is the SVG path data of the smoothed curve.
type EdgeLayout struct {
	From   string
	To     string
	Tags   []string
	Points []Point
	Path   string
}

// Layout is the result of Compute. It is read-only once returned.
type Layout struct {
	Direction Direction
	Nodes     []NodeLayout // regular nodes, by layer then order
	Edges     []EdgeLayout // input edge order
	Layers    [][]string   // final order including dummy IDs
	Crossings int
	Width     float64
	Height    float64
	MinX      float64
	MinY      float64

	index map[string]int
}

// Empty reports whether the layout has no nodes.
func (l *Layout) Empty() bool { return len(l.Nodes) == 0 }

// Node returns the positioned node with the given ID.
func (l *Layout) Node(id string) (NodeLayout, bool) {
	if l.index == nil {
		l.Reindex()
	}
	if i, ok := l.index[id]; ok {
		return l.Nodes[i], true
	}
	return NodeLayout{}, false
}

// Reindex rebuilds the ID lookup after Nodes was populated directly,
// e.g. when decoding a stored layout.
func (l *Layout) Reindex() {
	l.index = make(map[string]int, len(l.Nodes))
	for i, n := range l.Nodes {
		l.index[n.ID] = i
	}
}

// Compute lays out g in four stages: longest-path layering, subdivision
// of long edges, median crossing reduction and coordinate assignment,
// followed by Catmull-Rom edge routing. g itself is not modified.
//
// An empty graph yields an empty layout. A cyclic graph yields an error
// with code GRAPH_INTEGRITY. The output is a pure function of the graph
// (including its insertion order) and opts.
func Compute(g *dag.DAG, opts Options) (*Layout, error) {
	opts = opts.WithDefaults()
	l := &Layout{Direction: opts.Direction, index: map[string]int{}}
	if g == nil || g.NodeCount() == 0 {
		return l, nil
	}

	work := g.Clone()
	if err := transform.AssignLayers(work); err != nil {
		var cycle *dag.CycleError
		if stderrors.As(err, &cycle) {
			return nil, errors.Wrap(errors.ErrCodeGraphIntegrity, err, "cannot lay out cyclic graph")
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "assign layers")
	}
	chains := transform.Subdivide(work)

	l.Layers = opts.Orderer.Order(work)
	l.Crossings = dag.CountCrossings(work, l.Layers)

	centres := assignCoordinates(l.Layers, opts)
	for layer, ids := range l.Layers {
		for order, id := range ids {
			n, _ := work.Node(id)
			if n.IsDummy() {
				continue
			}
			c := centres[id]
			l.index[id] = len(l.Nodes)
			l.Nodes = append(l.Nodes, NodeLayout{
				ID:     id,
				Label:  n.Label,
				Layer:  layer,
				Order:  order,
				X:      c.X,
				Y:      c.Y,
				Width:  opts.NodeWidth,
				Height: opts.NodeHeight,
				Meta:   n.Meta,
			})
		}
	}

	l.Edges = make([]EdgeLayout, 0, len(chains))
	for _, ch := range chains {
		points := make([]Point, 0, len(ch.Path))
		for _, id := range ch.Path {
			points = append(points, centres[id])
		}
		l.Edges = append(l.Edges, EdgeLayout{
			From:   ch.From,
			To:     ch.To,
			Tags:   ch.Tags,
			Points: points,
			Path:   SVGPath(points),
		})
	}

	l.computeBounds(opts)
	return l, nil
}

// assignCoordinates maps (layer, order) to box centres. Every layer is
// centred on the widest one, whose first node sits on the origin.
func assignCoordinates(layers [][]string, opts Options) map[string]Point {
	across, along := opts.NodeWidth, opts.NodeHeight
	if opts.Direction == LeftRight {
		across, along = opts.NodeHeight, opts.NodeWidth
	}
	nodePitch := across + opts.NodeSpacing
	layerPitch := along + opts.LayerSpacing

	widest := 0
	for _, ids := range layers {
		widest = max(widest, len(ids))
	}

	centres := make(map[string]Point)
	for layer, ids := range layers {
		offset := float64(widest-len(ids)) * nodePitch / 2
		for order, id := range ids {
			a := offset + float64(order)*nodePitch
			b := float64(layer) * layerPitch
			if opts.Direction == LeftRight {
				centres[id] = Point{X: b, Y: a}
			} else {
				centres[id] = Point{X: a, Y: b}
			}
		}
	}
	return centres
}

func (l *Layout) computeBounds(opts Options) {
	if len(l.Nodes) == 0 {
		return
	}
	minX, minY := l.Nodes[0].X, l.Nodes[0].Y
	maxX, maxY := minX, minY
	for _, n := range l.Nodes {
		minX, maxX = min(minX, n.X), max(maxX, n.X)
		minY, maxY = min(minY, n.Y), max(maxY, n.Y)
	}
	for _, e := range l.Edges {
		for _, p := range e.Points {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	l.MinX = minX - opts.NodeWidth/2
	l.MinY = minY - opts.NodeHeight/2
	l.Width = maxX - minX + opts.NodeWidth
	l.Height = maxY - minY + opts.NodeHeight
}
