// Package render draws truss models and analysis results.
//
// Two renderers are provided:
//
//   - [nodelink]: the topology as a Graphviz diagram with nodes pinned at
//     their coordinates and members coloured by tension or compression
//   - [deformed]: a gonum/plot chart of the undeformed and scaled deformed
//     shape
//
// This package holds what both share: output formats and the
// tension/compression classification.
//
//	dot := nodelink.ToDOT(m, res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
//	png, err := deformed.Plot(m, res, deformed.Options{Format: render.FormatPNG})
//
// [nodelink]: github.com/matzehuels/trussfea/pkg/render/nodelink
// [deformed]: github.com/matzehuels/trussfea/pkg/render/deformed
package render
