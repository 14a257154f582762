package render

import (
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/bfarr/prism/cube"
)

// drawMarginal renders the diagonal panel for dimension d: a step-outline
// density histogram of the visible samples on the fixed bin edges.
func (r *Renderer) drawMarginal(d int, m cube.Matrix) error {
	dp := r.cfg.Plan.Dim(d)
	r.scratch = m.Col(d, r.scratch)
	dens, err := r.cfg.Plan.Histogram(d, r.scratch)
	if err != nil {
		return err
	}

	p := plot.New()
	p.X.Min, p.X.Max = dp.Min, dp.Max
	p.Y.Min, p.Y.Max = 0, dp.HeightCap
	r.styleAxes(p, d, d)

	// Early iterations can spike above the final-iteration height cap;
	// the line plotter clips them at the panel edge.
	outline, err := plotter.NewLine(stepXYs(dp.Edges, dens))
	if err != nil {
		return err
	}
	outline.Color = r.cfg.DataColor
	outline.Width = vg.Points(1)
	p.Add(outline)

	if len(r.cfg.Truths) != 0 {
		truth, err := verticalLine(r.cfg.Truths[d], 0, dp.HeightCap)
		if err != nil {
			return err
		}
		truth.Color = r.cfg.TruthColor
		truth.Width = vg.Points(1)
		p.Add(truth)
	}

	p.Draw(r.tiles.At(r.dc, d, d))
	return nil
}

// drawJoint renders the off-diagonal panel at grid row i, column j: a
// scatter of dimension j against dimension i for every visible sample.
func (r *Renderer) drawJoint(i, j int, m cube.Matrix) error {
	xp, yp := r.cfg.Plan.Dim(j), r.cfg.Plan.Dim(i)

	p := plot.New()
	p.X.Min, p.X.Max = xp.Min, xp.Max
	p.Y.Min, p.Y.Max = yp.Min, yp.Max
	r.styleAxes(p, i, j)

	cloud, err := plotter.NewScatter(colPair{m: m, x: j, y: i})
	if err != nil {
		return err
	}
	cloud.GlyphStyle = draw.GlyphStyle{
		Color:  r.cfg.DataColor,
		Radius: r.cfg.MarkerRadius,
		Shape:  draw.CircleGlyph{},
	}
	if r.styles != nil {
		styles, walkers := r.styles, r.cfg.Walkers
		cloud.GlyphStyleFunc = func(k int) draw.GlyphStyle { return styles[k%walkers] }
	}
	p.Add(cloud)

	if len(r.cfg.Truths) != 0 {
		vert, err := verticalLine(r.cfg.Truths[j], yp.Min, yp.Max)
		if err != nil {
			return err
		}
		horiz, err := horizontalLine(r.cfg.Truths[i], xp.Min, xp.Max)
		if err != nil {
			return err
		}
		vert.Color = r.cfg.TruthColor
		vert.Width = vg.Points(1)
		horiz.Color = r.cfg.TruthColor
		horiz.Width = vg.Points(1)
		p.Add(vert, horiz)
	}

	p.Draw(r.tiles.At(r.dc, j, i))
	return nil
}

// styleAxes applies the corner-grid tick convention: only the bottom row
// keeps x ticks and labels, only the left column keeps y ticks and
// labels, and diagonal panels never expose their density axis.
func (r *Renderer) styleAxes(p *plot.Plot, row, col int) {
	p.X.Tick.Label.Font.Size = vg.Points(7)
	p.Y.Tick.Label.Font.Size = vg.Points(7)
	p.X.Label.TextStyle.Font.Size = vg.Points(9)
	p.Y.Label.TextStyle.Font.Size = vg.Points(9)

	if row == r.dims-1 {
		if len(r.cfg.Labels) != 0 {
			p.X.Label.Text = r.cfg.Labels[col]
		}
	} else {
		p.X.Tick.Marker = plot.ConstantTicks(nil)
	}

	if col == 0 && row != col {
		if len(r.cfg.Labels) != 0 {
			p.Y.Label.Text = r.cfg.Labels[row]
		}
	} else {
		p.Y.Tick.Marker = plot.ConstantTicks(nil)
	}
}

// stepXYs turns bin edges and densities into the outline of a step
// histogram, dropping to zero at both ends.
func stepXYs(edges, dens []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, 2*len(dens)+2)
	pts = append(pts, plotter.XY{X: edges[0], Y: 0})
	for i, d := range dens {
		pts = append(pts,
			plotter.XY{X: edges[i], Y: d},
			plotter.XY{X: edges[i+1], Y: d})
	}
	pts = append(pts, plotter.XY{X: edges[len(edges)-1], Y: 0})
	return pts
}

func verticalLine(x, y0, y1 float64) (*plotter.Line, error) {
	return plotter.NewLine(plotter.XYs{{X: x, Y: y0}, {X: x, Y: y1}})
}

func horizontalLine(y, x0, x1 float64) (*plotter.Line, error) {
	return plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
}

// colPair adapts two matrix columns to the plotter XYer interface without
// copying samples.
type colPair struct {
	m    cube.Matrix
	x, y int
}

func (c colPair) Len() int                { return c.m.Rows() }
func (c colPair) XY(i int) (x, y float64) { return c.m.At(i, c.x), c.m.At(i, c.y) }

// walkerStyles builds one glyph style per walker, hues spread evenly
// around the color wheel.
func walkerStyles(n int, radius vg.Length) []draw.GlyphStyle {
	styles := make([]draw.GlyphStyle, n)
	for i := range styles {
		hue := 360 * float64(i) / float64(n)
		styles[i] = draw.GlyphStyle{
			Color:  colorful.Hsv(hue, 0.6, 0.85),
			Radius: radius,
			Shape:  draw.CircleGlyph{},
		}
	}
	return styles
}
