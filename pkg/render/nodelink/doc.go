// Package nodelink renders truss topology as a node-link diagram.
//
// Nodes are drawn at their model coordinates (Graphviz neato with pinned
// positions) and bars as undirected edges. Given an analysis result, bars
// in tension are red, bars in compression blue and zero-force bars grey.
//
//	dot := nodelink.ToDOT(m, res, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [ToDOT] output can also be saved and processed with external Graphviz
// tools; pass -Kneato (or -n) so pinned positions are honoured.
//
// Rendering runs Graphviz in-process through [github.com/goccy/go-graphviz].
package nodelink
