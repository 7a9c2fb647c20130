// Package svg draws computed layouts as standalone SVG documents.
//
// Nodes are rounded boxes filled with their id colour; edges are the
// layout's smoothed paths stroked with a gradient from the source colour
// to the target colour. An optional execution projection adds status
// classes, tooltips and the inspected-node highlight.
package svg

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/matzehuels/blueprint/pkg/depgraph"
	"github.com/matzehuels/blueprint/pkg/layout"
	"github.com/matzehuels/blueprint/pkg/projection"
	"github.com/matzehuels/blueprint/pkg/render/color"
)

// Defaults.
const (
	DefaultPadding     = 12.0
	DefaultStrokeWidth = 3.0
	cornerRadius       = 5.0
)

const styleCSS = `
    .node text { font-family: sans-serif; font-weight: bold; font-size: 12px; }
    .node.highlight rect { stroke: #222; stroke-width: 2; }
    .node.status-running rect { stroke-dasharray: 4 2; stroke: #222; }
    .node.status-failed rect, .node.status-cancelled rect { stroke: #c0392b; stroke-width: 2; }
    .edge { fill: none; }`

// Options configures Render.
type Options struct {
	// Highlight is the id of the node to thicken. Ignored when Projection
	// is set; the projection's highlighted node is used instead.
	Highlight      string
	HighlightScale float64
	// PathLabels draws the notebook path instead of the node label.
	PathLabels  bool
	Padding     float64
	StrokeWidth float64
	// Projection overlays execution state.
	Projection *projection.Projection
}

// Render returns the SVG document for l. An empty layout yields an empty
// drawing.
func Render(l *layout.Layout, opts Options) []byte {
	if opts.Padding <= 0 {
		opts.Padding = DefaultPadding
	}
	if opts.StrokeWidth <= 0 {
		opts.StrokeWidth = DefaultStrokeWidth
	}

	var buf bytes.Buffer
	if l == nil || l.Empty() {
		buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 0 0" width="0" height="0"></svg>` + "\n")
		return buf.Bytes()
	}

	highlight := opts.Highlight
	if opts.Projection != nil {
		highlight = ""
		for _, n := range opts.Projection.Nodes {
			if n.Highlighted {
				highlight = n.ID
				break
			}
		}
	}

	pad := opts.Padding
	w, h := l.Width+2*pad, l.Height+2*pad
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%.0f" height="%.0f">`+"\n",
		num(l.MinX-pad), num(l.MinY-pad), num(w), num(h), w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", styleCSS)

	fills := make(map[string]string, len(l.Nodes))
	for _, n := range l.Nodes {
		fills[n.ID] = color.Hex(colourKey(n))
	}

	renderGradients(&buf, l, fills)
	renderEdges(&buf, l, opts.StrokeWidth)
	renderNodes(&buf, l, fills, highlight, opts)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderGradients(buf *bytes.Buffer, l *layout.Layout, fills map[string]string) {
	if len(l.Edges) == 0 {
		return
	}
	buf.WriteString("  <defs>\n")
	for i, e := range l.Edges {
		src, ok1 := l.Node(e.From)
		dst, ok2 := l.Node(e.To)
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(buf, `    <linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%s" y1="%s" x2="%s" y2="%s">`+"\n",
			gradientID(i), num(src.X), num(src.Y), num(dst.X), num(dst.Y))
		fmt.Fprintf(buf, `      <stop offset="0%%" stop-color="%s"/>`+"\n", fills[e.From])
		fmt.Fprintf(buf, `      <stop offset="100%%" stop-color="%s"/>`+"\n", fills[e.To])
		buf.WriteString("    </linearGradient>\n")
	}
	buf.WriteString("  </defs>\n")
}

func renderEdges(buf *bytes.Buffer, l *layout.Layout, stroke float64) {
	for i, e := range l.Edges {
		if e.Path == "" {
			continue
		}
		fmt.Fprintf(buf, `  <path class="edge" data-from="%s" data-to="%s" d="%s" stroke="url(#%s)" stroke-width="%s"/>`+"\n",
			esc(e.From), esc(e.To), e.Path, gradientID(i), num(stroke))
	}
}

func renderNodes(buf *bytes.Buffer, l *layout.Layout, fills map[string]string, highlight string, opts Options) {
	for _, b := range l.Boxes(highlight, opts.HighlightScale) {
		class := "node"
		var title string
		if b.Highlighted {
			class += " highlight"
		}
		if opts.Projection != nil {
			if pn, ok := opts.Projection.Node(b.ID); ok && pn.HasStatus() {
				class += " status-" + strings.ToLower(string(*pn.Status))
				title = pn.Term
				if pn.Exception != "" {
					title += "\n" + pn.Exception
				}
			}
		}

		label := b.Label
		if opts.PathLabels {
			if n, ok := l.Node(b.ID); ok {
				if p, ok := n.Meta[depgraph.MetaPath].(string); ok && p != "" {
					label = p
				}
			}
		}
		fill := fills[b.ID]

		fmt.Fprintf(buf, `  <g class="%s" id="node-%s">`+"\n", class, esc(b.ID))
		if title != "" {
			fmt.Fprintf(buf, "    <title>%s</title>\n", esc(title))
		}
		fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s" fill="%s"/>`+"\n",
			num(b.Left), num(b.Top), num(b.Width), num(b.Height), num(cornerRadius), num(cornerRadius), fill)
		fmt.Fprintf(buf, `    <text x="%s" y="%s" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			num(b.CenterX()), num(b.CenterY()), color.TextColor(fill), esc(label))
		buf.WriteString("  </g>\n")
	}
}

// colourKey is the notebook id when the node carries one, so a job node
// is coloured like its notebook.
func colourKey(n layout.NodeLayout) string {
	if id, ok := n.Meta[depgraph.MetaNotebookID].(string); ok && id != "" {
		return id
	}
	return n.ID
}

func gradientID(i int) string { return fmt.Sprintf("edge-gradient-%d", i) }

func esc(s string) string { return html.EscapeString(s) }

func num(v float64) string { return fmt.Sprintf("%.2f", v) }
