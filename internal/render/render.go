// Package render rasterizes corner-plot frames. A Renderer owns one
// vgimg canvas sized for the full lower-triangle grid and redraws it for
// every frame, so a long animation reuses a single raster surface
// instead of allocating one per iteration. Panel geometry comes from a
// binning.Plan fixed before the first frame, which keeps the axes still
// while the walker cloud moves.
package render

import (
	"fmt"
	"image"
	"image/color"
	imdraw "image/draw"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/bfarr/prism/cube"
	"github.com/bfarr/prism/internal/binning"
)

// Config fixes everything about a frame except the samples in it.
type Config struct {
	// Plan provides per-dimension extents, bin edges and marginal height
	// caps. Its dimension count sets the grid size.
	Plan *binning.Plan

	// Labels are the axis names for each dimension. Empty means
	// unlabeled axes.
	Labels []string

	// Truths marks reference parameter values with cross-hair lines.
	// Empty means no truth overlay.
	Truths []float64

	// DataColor draws histogram outlines and scatter markers.
	DataColor color.Color

	// TruthColor draws the truth cross-hairs.
	TruthColor color.Color

	// MarkerRadius sizes the scatter glyphs.
	MarkerRadius vg.Length

	// PanelSize is the edge length of one grid cell.
	PanelSize vg.Length

	// DPI converts canvas lengths to pixels.
	DPI int

	// ColorByWalker cycles scatter marker colors per walker instead of
	// using DataColor, to make individual walker trajectories traceable.
	ColorByWalker bool

	// Walkers is the ensemble size, used to cycle the walker palette
	// when ColorByWalker is set.
	Walkers int
}

// Renderer draws frames onto a reused canvas.
type Renderer struct {
	cfg     Config
	dims    int
	canvas  *vgimg.Canvas
	dc      draw.Canvas
	tiles   draw.Tiles
	styles  []draw.GlyphStyle
	scratch []float64
}

// New validates the configuration and allocates the frame canvas.
func New(cfg Config) (*Renderer, error) {
	if cfg.Plan == nil {
		return nil, fmt.Errorf("render: nil binning plan")
	}
	dims := cfg.Plan.Dims()
	if dims < 1 {
		return nil, fmt.Errorf("render: plan has no dimensions")
	}
	if len(cfg.Labels) != 0 && len(cfg.Labels) != dims {
		return nil, fmt.Errorf("render: %d labels for %d dimensions", len(cfg.Labels), dims)
	}
	if len(cfg.Truths) != 0 && len(cfg.Truths) != dims {
		return nil, fmt.Errorf("render: %d truths for %d dimensions", len(cfg.Truths), dims)
	}
	if cfg.PanelSize <= 0 {
		return nil, fmt.Errorf("render: panel size %v must be positive", cfg.PanelSize)
	}
	if cfg.DPI < 1 {
		return nil, fmt.Errorf("render: dpi %d must be positive", cfg.DPI)
	}
	if cfg.MarkerRadius <= 0 {
		return nil, fmt.Errorf("render: marker radius %v must be positive", cfg.MarkerRadius)
	}
	if cfg.DataColor == nil || cfg.TruthColor == nil {
		return nil, fmt.Errorf("render: colors must be set")
	}
	if cfg.ColorByWalker && cfg.Walkers < 1 {
		return nil, fmt.Errorf("render: walker count %d must be positive to color by walker", cfg.Walkers)
	}

	side := vg.Length(dims) * cfg.PanelSize
	canvas := vgimg.NewWith(vgimg.UseWH(side, side), vgimg.UseDPI(cfg.DPI))
	r := &Renderer{
		cfg:    cfg,
		dims:   dims,
		canvas: canvas,
		dc:     draw.New(canvas),
		tiles:  draw.Tiles{Rows: dims, Cols: dims},
	}
	if cfg.ColorByWalker {
		r.styles = walkerStyles(cfg.Walkers, cfg.MarkerRadius)
	}
	return r, nil
}

// Bounds returns the pixel dimensions of rendered frames.
func (r *Renderer) Bounds() (width, height int) {
	b := r.canvas.Image().Bounds()
	return b.Dx(), b.Dy()
}

// Frame redraws the canvas with the given sample matrix and returns a
// copy of the pixels. The matrix must have one column per planned
// dimension. The returned image is independent of the canvas and safe to
// keep while later frames render.
func (r *Renderer) Frame(m cube.Matrix) (*image.RGBA, error) {
	if m.Cols() != r.dims {
		return nil, fmt.Errorf("render: matrix has %d columns, plan has %d dimensions", m.Cols(), r.dims)
	}
	if m.Rows() < 1 {
		return nil, fmt.Errorf("render: no samples to draw")
	}

	r.clear()
	for i := 0; i < r.dims; i++ {
		for j := 0; j <= i; j++ {
			var err error
			if i == j {
				err = r.drawMarginal(i, m)
			} else {
				err = r.drawJoint(i, j, m)
			}
			if err != nil {
				return nil, fmt.Errorf("render: panel (%d,%d): %w", i, j, err)
			}
		}
	}
	return r.snapshot(), nil
}

// clear repaints the whole canvas white. Without this the upper triangle
// and panel margins would keep pixels from the previous frame.
func (r *Renderer) clear() {
	rect := r.dc.Rectangle
	var p vg.Path
	p.Move(vg.Point{X: rect.Min.X, Y: rect.Min.Y})
	p.Line(vg.Point{X: rect.Max.X, Y: rect.Min.Y})
	p.Line(vg.Point{X: rect.Max.X, Y: rect.Max.Y})
	p.Line(vg.Point{X: rect.Min.X, Y: rect.Max.Y})
	p.Close()
	r.dc.SetColor(color.White)
	r.dc.Fill(p)
}

func (r *Renderer) snapshot() *image.RGBA {
	src := r.canvas.Image()
	out := image.NewRGBA(src.Bounds())
	imdraw.Draw(out, out.Bounds(), src, src.Bounds().Min, imdraw.Src)
	return out
}
