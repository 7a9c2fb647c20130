package layout

// DefaultHighlightScale is the thickness factor applied to the highlighted node.
const DefaultHighlightScale = 1.5

// Box is a node rectangle ready to draw. Left/Top is the upper-left corner.
type Box struct {
	ID          string
	Label       string
	Left, Top   float64
	Width       float64
	Height      float64
	Highlighted bool
}

// Right returns the right edge of the box.
func (b Box) Right() float64 { return b.Left + b.Width }

// Bottom returns the bottom edge of the box.
func (b Box) Bottom() float64 { return b.Top + b.Height }

// CenterX returns the horizontal centre of the box.
func (b Box) CenterX() float64 { return b.Left + b.Width/2 }

// CenterY returns the vertical centre of the box.
func (b Box) CenterY() float64 { return b.Top + b.Height/2 }

// Boxes returns the node rectangles of the layout, with the node
// highlightID (if any) thickened by scale along the layer axis around its
// centre: taller in a top-down layout, wider in a left-right one.
//
// Highlighting is a drawing overlay. It never reruns layering or ordering,
// and every other box is identical to the unhighlighted result.
// A scale <= 0 uses DefaultHighlightScale.
func (l *Layout) Boxes(highlightID string, scale float64) []Box {
	if scale <= 0 {
		scale = DefaultHighlightScale
	}
	boxes := make([]Box, 0, len(l.Nodes))
	for _, n := range l.Nodes {
		w, h := n.Width, n.Height
		hl := highlightID != "" && n.ID == highlightID
		if hl {
			if l.Direction == LeftRight {
				w *= scale
			} else {
				h *= scale
			}
		}
		boxes = append(boxes, Box{
			ID:          n.ID,
			Label:       n.Label,
			Left:        n.X - w/2,
			Top:         n.Y - h/2,
			Width:       w,
			Height:      h,
			Highlighted: hl,
		})
	}
	return boxes
}
