// Package deformed plots the undeformed and deformed shape of a solved truss
// with gonum/plot.
//
// Displacements of stiff structures are orders of magnitude smaller than the
// structure, so the deformed shape is drawn with an amplification factor.
// [AutoScale] picks one that makes the largest displacement a tenth of the
// model size.
package deformed

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/trussfea/pkg/render"
	"github.com/matzehuels/trussfea/pkg/truss"
)

// Options configures the plot.
type Options struct {
	Scale  float64 // displacement amplification; zero picks AutoScale
	Width  vg.Length
	Height vg.Length
	Format string // render.FormatPNG, FormatSVG or FormatPDF
	Title  string
}

// Formats lists the output formats supported by [Plot].
var Formats = []string{render.FormatPNG, render.FormatSVG, render.FormatPDF}

func (o *Options) setDefaults() {
	if o.Width <= 0 {
		o.Width = 16 * vg.Centimeter
	}
	if o.Height <= 0 {
		o.Height = 10 * vg.Centimeter
	}
	if o.Format == "" {
		o.Format = render.FormatPNG
	}
	if o.Title == "" {
		o.Title = "Deformed shape"
	}
}

// AutoScale returns the amplification that maps the largest displacement to
// a tenth of the model's bounding-box size, or 1 when nothing moves.
func AutoScale(m *truss.Model, res *truss.Result) float64 {
	if res == nil || res.MaxDisp == 0 {
		return 1
	}
	var minX, maxX, minY, maxY float64
	for i, n := range m.Nodes {
		if i == 0 {
			minX, maxX, minY, maxY = n.X, n.X, n.Y, n.Y
			continue
		}
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	size := math.Max(maxX-minX, maxY-minY)
	if size == 0 {
		return 1
	}
	return 0.1 * size / res.MaxDisp
}

// Plot draws the undeformed shape as dashed grey lines and the deformed
// shape with members coloured by axial state.
func Plot(m *truss.Model, res *truss.Result, opts Options) ([]byte, error) {
	opts.setDefaults()
	if err := render.ValidateFormat(opts.Format, Formats...); err != nil {
		return nil, err
	}
	if res == nil || len(res.U) != m.DOFs() || len(res.ElemForces) != len(m.Elements) {
		return nil, fmt.Errorf("result does not match model (%d nodes, %d elements)", len(m.Nodes), len(m.Elements))
	}
	scale := opts.Scale
	if scale == 0 {
		scale = AutoScale(m, res)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (×%.3g)", opts.Title, scale)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	moved := func(i int) plotter.XY {
		n := m.Nodes[i]
		return plotter.XY{X: n.X + scale*res.U[2*i], Y: n.Y + scale*res.U[2*i+1]}
	}
	states := render.Classify(res.ElemForces)

	var legendUndeformed *plotter.Line
	legend := map[render.MemberState]*plotter.Line{}
	for i, e := range m.Elements {
		a, b := m.Nodes[e.N1], m.Nodes[e.N2]
		base, err := plotter.NewLine(plotter.XYs{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}})
		if err != nil {
			return nil, err
		}
		base.LineStyle.Color = color.Gray{Y: 170}
		base.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(base)
		legendUndeformed = base

		def, err := plotter.NewLine(plotter.XYs{moved(e.N1), moved(e.N2)})
		if err != nil {
			return nil, err
		}
		def.LineStyle.Color = hexColor(render.StateColor[states[i]])
		def.LineStyle.Width = vg.Points(2)
		p.Add(def)
		legend[states[i]] = def
	}

	pts := make(plotter.XYs, len(m.Nodes))
	for i := range m.Nodes {
		pts[i] = moved(i)
	}
	if len(pts) > 0 {
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
	}

	if legendUndeformed != nil {
		p.Legend.Add("undeformed", legendUndeformed)
	}
	for _, s := range []render.MemberState{render.Tension, render.Compression, render.Unloaded} {
		if l, ok := legend[s]; ok {
			p.Legend.Add(s.String(), l)
		}
	}
	p.Legend.Top = true

	wt, err := p.WriterTo(opts.Width, opts.Height, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("plot: %w", err)
	}
	return buf.Bytes(), nil
}

// hexColor parses "#rrggbb".
func hexColor(s string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
