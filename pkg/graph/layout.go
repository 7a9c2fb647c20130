package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/layout"
)

// Layout is the serialization format for a computed layout.
//
// It carries everything a renderer needs: positioned node boxes, routed
// edges with their SVG path data and the overall bounds. A stored layout
// can be rendered without the graph it was computed from.
type Layout struct {
	Direction layout.Direction `json:"direction" bson:"direction"`
	Nodes     []LayoutNode     `json:"nodes" bson:"nodes"`
	Edges     []LayoutEdge     `json:"edges" bson:"edges"`
	Layers    [][]string       `json:"layers,omitempty" bson:"layers,omitempty"`
	Crossings int              `json:"crossings" bson:"crossings"`
	Width     float64          `json:"width" bson:"width"`
	Height    float64          `json:"height" bson:"height"`
	MinX      float64          `json:"minX" bson:"minX"`
	MinY      float64          `json:"minY" bson:"minY"`
}

// LayoutNode is a positioned node. X and Y are the centre of its box.
type LayoutNode struct {
	ID     string         `json:"id" bson:"id"`
	Label  string         `json:"label" bson:"label"`
	Layer  int            `json:"layer" bson:"layer"`
	Order  int            `json:"order" bson:"order"`
	X      float64        `json:"x" bson:"x"`
	Y      float64        `json:"y" bson:"y"`
	Width  float64        `json:"width" bson:"width"`
	Height float64        `json:"height" bson:"height"`
	Kind   string         `json:"kind" bson:"kind"`
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// LayoutEdge is a routed edge.
type LayoutEdge struct {
	From   string         `json:"from" bson:"from"`
	To     string         `json:"to" bson:"to"`
	Tags   []string       `json:"tags,omitempty" bson:"tags,omitempty"`
	Points []layout.Point `json:"points" bson:"points"`
	Path   string         `json:"path" bson:"path"`
}

// ExportLayout converts a computed layout to its serialization format.
func ExportLayout(l *layout.Layout) Layout {
	out := Layout{Nodes: []LayoutNode{}, Edges: []LayoutEdge{}}
	if l == nil {
		out.Direction = layout.TopDown
		return out
	}
	out.Direction = l.Direction
	out.Layers = l.Layers
	out.Crossings = l.Crossings
	out.Width, out.Height = l.Width, l.Height
	out.MinX, out.MinY = l.MinX, l.MinY

	for _, n := range l.Nodes {
		ln := LayoutNode{
			ID:     n.ID,
			Label:  n.Label,
			Layer:  n.Layer,
			Order:  n.Order,
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
			Kind:   kindOf(dag.NodeKindRegular, n.Meta),
		}
		if len(n.Meta) > 0 {
			ln.Meta = maps.Clone(map[string]any(n.Meta))
		}
		out.Nodes = append(out.Nodes, ln)
	}
	for _, e := range l.Edges {
		out.Edges = append(out.Edges, LayoutEdge{
			From:   e.From,
			To:     e.To,
			Tags:   e.Tags,
			Points: e.Points,
			Path:   e.Path,
		})
	}
	return out
}

// Parse converts the serialization format back into a layout.Layout with
// its node index rebuilt.
func (l Layout) Parse() (*layout.Layout, error) {
	dir, err := layout.ParseDirection(string(l.Direction))
	if err != nil {
		return nil, err
	}
	out := &layout.Layout{
		Direction: dir,
		Layers:    l.Layers,
		Crossings: l.Crossings,
		Width:     l.Width,
		Height:    l.Height,
		MinX:      l.MinX,
		MinY:      l.MinY,
	}
	seen := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "layout node without id")
		}
		if seen[n.ID] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate layout node %q", n.ID)
		}
		seen[n.ID] = true
		out.Nodes = append(out.Nodes, layout.NodeLayout{
			ID:     n.ID,
			Label:  n.Label,
			Layer:  n.Layer,
			Order:  n.Order,
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
			Meta:   dag.Metadata(maps.Clone(n.Meta)),
		})
	}
	for _, e := range l.Edges {
		out.Edges = append(out.Edges, layout.EdgeLayout{
			From:   e.From,
			To:     e.To,
			Tags:   e.Tags,
			Points: e.Points,
			Path:   e.Path,
		})
	}
	out.Reindex()
	return out, nil
}

// MarshalLayout converts a computed layout to indented JSON bytes.
func MarshalLayout(l *layout.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLayout(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalLayout decodes JSON bytes into a layout.Layout.
func UnmarshalLayout(data []byte) (*layout.Layout, error) {
	return ReadLayout(bytes.NewReader(data))
}

// WriteLayout writes a computed layout as JSON to an io.Writer.
func WriteLayout(l *layout.Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ExportLayout(l)); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}

// ReadLayout decodes a JSON layout from an io.Reader.
func ReadLayout(r io.Reader) (*layout.Layout, error) {
	var data Layout
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout")
	}
	return data.Parse()
}

// WriteLayoutFile writes a computed layout to a JSON file.
func WriteLayoutFile(l *layout.Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteLayout(l, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadLayoutFile reads a JSON layout file.
func ReadLayoutFile(path string) (*layout.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLayout(f)
}
