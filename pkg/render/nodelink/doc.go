// Package nodelink renders dependency graphs through Graphviz.
//
// # Overview
//
// This package is the alternative to the built-in SVG renderer: the DAG is
// handed to Graphviz's own dot layout instead of the layered engine in
// pkg/layout. Nodes keep their id colours so both drawings read alike.
//
// # Usage
//
// Convert a DAG to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Direction: layout.LeftRight})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Direction: rankdir TB or LR
//   - Detailed: node labels include layer and metadata, edges their tags
//   - Highlight: node drawn with a thick outline
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
