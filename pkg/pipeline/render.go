package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/layout"
	"github.com/matzehuels/blueprint/pkg/projection"
	"github.com/matzehuels/blueprint/pkg/render"
	"github.com/matzehuels/blueprint/pkg/render/nodelink"
	"github.com/matzehuels/blueprint/pkg/render/svg"
)

// Renderers.
const (
	RendererLayered  = "layered"  // built-in layout drawn by pkg/render/svg
	RendererGraphviz = "graphviz" // Graphviz dot layout via pkg/render/nodelink
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	render.FormatSVG:  true,
	render.FormatDOT:  true,
	render.FormatJSON: true,
	render.FormatPDF:  true,
	render.FormatPNG:  true,
}

// RenderOptions configures Render.
type RenderOptions struct {
	Format   string
	Renderer string // RendererLayered (default) or RendererGraphviz
	// Highlight is the node to thicken when no projection is given.
	Highlight  string
	PathLabels bool
	// Detailed adds metadata to Graphviz labels.
	Detailed bool
	// Scale is the PNG resolution factor. Zero means 2.
	Scale float64
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, dot, json, pdf, png)", format)
	}
	return nil
}

// Render draws a view in the requested format. The layered renderer uses
// l (and p for execution state); the Graphviz renderer and the dot format
// use g. json is the serialized layout.
func Render(ctx context.Context, l *layout.Layout, g *dag.DAG, p *projection.Projection, opts RenderOptions) ([]byte, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}
	if opts.Scale <= 0 {
		opts.Scale = 2
	}

	switch opts.Format {
	case render.FormatJSON:
		return graph.MarshalLayout(l)
	case render.FormatDOT:
		return []byte(nodelink.ToDOT(g, dotOptions(l, p, opts))), nil
	}

	var out []byte
	switch opts.Renderer {
	case "", RendererLayered:
		out = svg.Render(l, svg.Options{
			Highlight:  opts.Highlight,
			PathLabels: opts.PathLabels,
			Projection: p,
		})
	case RendererGraphviz:
		var err error
		out, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(g, dotOptions(l, p, opts)))
		if err != nil {
			return nil, fmt.Errorf("render graphviz: %w", err)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown renderer %q", opts.Renderer)
	}

	switch opts.Format {
	case render.FormatPDF:
		return render.ToPDF(ctx, out)
	case render.FormatPNG:
		return render.ToPNG(ctx, out, opts.Scale)
	}
	return out, nil
}

func dotOptions(l *layout.Layout, p *projection.Projection, opts RenderOptions) nodelink.Options {
	o := nodelink.Options{Detailed: opts.Detailed, Highlight: opts.Highlight}
	if l != nil {
		o.Direction = l.Direction
	}
	if p != nil {
		for _, n := range p.Nodes {
			if n.Highlighted {
				o.Highlight = n.ID
			}
		}
	}
	return o
}
