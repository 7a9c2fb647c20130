// Package render turns computed layouts into pictures.
//
// # Overview
//
// Two renderers share this package's helpers:
//
//   - [svg]: draws a [layout.Layout] directly, with colour-hashed node boxes,
//     gradient edges and an optional execution overlay
//   - [nodelink]: hands the DAG to Graphviz and returns its drawing
//
// Both colour nodes through [color].
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg):
//
//	out := svg.Render(l, svg.Options{})
//	pdf, err := render.ToPDF(ctx, out)
//	png, err := render.ToPNG(ctx, out, 2.0)  // 2x scale
//
// [svg]: github.com/matzehuels/blueprint/pkg/render/svg
// [nodelink]: github.com/matzehuels/blueprint/pkg/render/nodelink
// [color]: github.com/matzehuels/blueprint/pkg/render/color
// [layout.Layout]: github.com/matzehuels/blueprint/pkg/layout.Layout
package render
