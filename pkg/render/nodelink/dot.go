package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/trussfea/pkg/render"
	"github.com/matzehuels/trussfea/pkg/truss"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds member forces to edge labels and loads to node labels.
	Detailed bool

	// Size is the length in points of the longer side of the model's
	// bounding box. Zero uses 400.
	Size float64
}

// ToDOT converts a model to Graphviz DOT. Nodes are pinned at their
// coordinates, so the output must be laid out with neato (as [RenderSVG]
// does). When res is non-nil members are coloured by their axial state.
//
// Supported nodes are drawn as grey triangles; loaded nodes carry an
// external label with the load vector.
func ToDOT(m *truss.Model, res *truss.Result, opts Options) string {
	size := opts.Size
	if size <= 0 {
		size = 400
	}
	scale := size / extent(m.Nodes)

	fixed := make(map[int]bool, len(m.Fixed))
	for _, d := range m.Fixed {
		fixed[d/2] = true
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12, width=0.3, fixedsize=true];\n")
	buf.WriteString("  edge [penwidth=3];\n")
	buf.WriteString("\n")

	for i, n := range m.Nodes {
		attrs := []string{
			fmt.Sprintf("label=%q", strconv.Itoa(i)),
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.X*scale, n.Y*scale),
		}
		if fixed[i] {
			attrs = append(attrs, "shape=triangle", "fillcolor=lightgrey")
		}
		if opts.Detailed {
			if l := loadLabel(m.Loads, i); l != "" {
				attrs = append(attrs, fmt.Sprintf("xlabel=%q", l))
			}
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	var states []render.MemberState
	if res != nil && len(res.ElemForces) == len(m.Elements) {
		states = render.Classify(res.ElemForces)
	}
	for i, e := range m.Elements {
		attrs := []string{fmt.Sprintf("tooltip=\"e%d\"", i)}
		if states != nil {
			attrs = append(attrs, fmt.Sprintf("color=%q", render.StateColor[states[i]]))
			if opts.Detailed {
				attrs = append(attrs, fmt.Sprintf("label=%q", formatForce(res.ElemForces[i])))
			}
		}
		fmt.Fprintf(&buf, "  n%d -- n%d [%s];\n", e.N1, e.N2, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// extent is the longer side of the bounding box, or 1 for degenerate boxes.
func extent(nodes []truss.Node) float64 {
	if len(nodes) == 0 {
		return 1
	}
	minX, maxX := nodes[0].X, nodes[0].X
	minY, maxY := nodes[0].Y, nodes[0].Y
	for _, n := range nodes[1:] {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	if e := math.Max(maxX-minX, maxY-minY); e > 0 {
		return e
	}
	return 1
}

func loadLabel(loads []float64, node int) string {
	if 2*node+1 >= len(loads) {
		return ""
	}
	fx, fy := loads[2*node], loads[2*node+1]
	if fx == 0 && fy == 0 {
		return ""
	}
	return fmt.Sprintf("F=(%s, %s)", formatForce(fx), formatForce(fy))
}

func formatForce(f float64) string {
	return strconv.FormatFloat(f, 'g', 4, 64) + " N"
}

// RenderSVG lays out a DOT graph with neato and renders it to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out a DOT graph with neato and renders it to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// responsive one that keeps the aspect ratio.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
