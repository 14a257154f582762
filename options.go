package prism

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/vg"

	"github.com/bfarr/prism/cube"
)

// Defaults applied by Corner when the corresponding Options field is
// left zero.
const (
	// DefaultFPS is the playback rate stamped into saved animations.
	DefaultFPS = 30
	// DefaultFinalBins is how many histogram bins span the final
	// iteration's sample range.
	DefaultFinalBins = 50
	// DefaultRoughSeconds is the playback length the thinning heuristic
	// aims for.
	DefaultRoughSeconds = 10.0
	// DefaultDPI rasterizes panels at screen resolution.
	DefaultDPI = 96
	// DefaultColor is the sample ink.
	DefaultColor = "#000000"
	// DefaultTruthColor is the steel blue used for truth cross-hairs.
	DefaultTruthColor = "#4682b4"
	// DefaultMarkerPoints is the scatter glyph radius in printer's
	// points.
	DefaultMarkerPoints = 1.5
	// DefaultJPEGQuality is the per-frame JPEG quality for AVI output.
	DefaultJPEGQuality = 90
)

// DefaultPanelSize is the edge length of one corner-grid cell.
const DefaultPanelSize = 2 * vg.Inch

// Options configure a corner animation. The zero value renders a
// snapshot-per-iteration animation with the defaults above.
type Options struct {
	// Policy selects which samples are visible in the frame for
	// iteration t: just that iteration's walkers (Snapshot, the
	// default), everything up to t (Cumulative), or the trailing
	// WindowSize iterations (Window).
	Policy cube.SlicePolicy

	// WindowSize is the trailing iteration count for the Window policy.
	// Ignored by the other policies.
	WindowSize int

	// Labels name each dimension on the outer axes. Leave empty for
	// unlabeled axes; otherwise the length must match the chain.
	Labels []string

	// Truths marks known parameter values with cross-hair lines in
	// every panel. Leave empty for none.
	Truths []float64

	// Color is the sample ink as a hex string.
	Color string

	// TruthColor is the cross-hair ink as a hex string.
	TruthColor string

	// MarkerSize is the scatter glyph radius in printer's points.
	MarkerSize float64

	// FinalBins sets the histogram resolution: the bin width is the
	// final iteration's range divided by FinalBins.
	FinalBins int

	// PanelSize is the edge length of one grid cell.
	PanelSize vg.Length

	// DPI converts panel lengths to pixels.
	DPI int

	// FPS is the default playback rate for saved animations.
	FPS int

	// RoughSeconds is the target playback length. Chains with more
	// iterations than fit are strided down before rendering. Negative
	// disables thinning; zero means DefaultRoughSeconds.
	RoughSeconds float64

	// ColorByWalker tints scatter markers per walker so individual
	// trajectories can be followed.
	ColorByWalker bool

	// CrossfadeFrames inserts this many eased blend frames between
	// consecutive iterations. Zero disables crossfading.
	CrossfadeFrames int

	// ShowCounter stamps "iteration / total" in the frame corner.
	ShowCounter bool

	// ShowProgress draws a playback progress bar along the bottom edge.
	ShowProgress bool

	// JPEGQuality is the per-frame JPEG quality for AVI output, 1-100.
	JPEGQuality int
}

// withDefaults fills zero fields with the package defaults.
func (o Options) withDefaults() Options {
	if o.Color == "" {
		o.Color = DefaultColor
	}
	if o.TruthColor == "" {
		o.TruthColor = DefaultTruthColor
	}
	if o.MarkerSize == 0 {
		o.MarkerSize = DefaultMarkerPoints
	}
	if o.FinalBins == 0 {
		o.FinalBins = DefaultFinalBins
	}
	if o.PanelSize == 0 {
		o.PanelSize = DefaultPanelSize
	}
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.FPS == 0 {
		o.FPS = DefaultFPS
	}
	if o.RoughSeconds == 0 {
		o.RoughSeconds = DefaultRoughSeconds
	}
	if o.JPEGQuality == 0 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	return o
}

// validate checks an already-defaulted Options against the chain shape.
func (o Options) validate(dims int) error {
	if !o.Policy.Valid() {
		return fmt.Errorf("prism: invalid slice policy %d", int(o.Policy))
	}
	if o.Policy == cube.Window && o.WindowSize < 1 {
		return fmt.Errorf("prism: window policy needs a positive WindowSize, got %d", o.WindowSize)
	}
	if len(o.Labels) != 0 && len(o.Labels) != dims {
		return fmt.Errorf("prism: %d labels for a %d-dimensional chain", len(o.Labels), dims)
	}
	if len(o.Truths) != 0 && len(o.Truths) != dims {
		return fmt.Errorf("prism: %d truths for a %d-dimensional chain", len(o.Truths), dims)
	}
	for d, v := range o.Truths {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("prism: truth for dimension %d is not finite", d)
		}
	}
	if _, err := colorful.Hex(o.Color); err != nil {
		return fmt.Errorf("prism: bad sample color %q: %w", o.Color, err)
	}
	if _, err := colorful.Hex(o.TruthColor); err != nil {
		return fmt.Errorf("prism: bad truth color %q: %w", o.TruthColor, err)
	}
	if o.MarkerSize < 0 {
		return fmt.Errorf("prism: marker size %v must be positive", o.MarkerSize)
	}
	if o.FinalBins < 1 {
		return fmt.Errorf("prism: final bin count %d must be positive", o.FinalBins)
	}
	if o.PanelSize < 0 {
		return fmt.Errorf("prism: panel size %v must be positive", o.PanelSize)
	}
	if o.DPI < 1 {
		return fmt.Errorf("prism: dpi %d must be positive", o.DPI)
	}
	if o.FPS < 1 {
		return fmt.Errorf("prism: fps %d must be positive", o.FPS)
	}
	if math.IsNaN(o.RoughSeconds) {
		return fmt.Errorf("prism: rough seconds must be a number")
	}
	if o.CrossfadeFrames < 0 {
		return fmt.Errorf("prism: crossfade frame count %d must not be negative", o.CrossfadeFrames)
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return fmt.Errorf("prism: jpeg quality %d outside 1..100", o.JPEGQuality)
	}
	return nil
}

// colors parses the hex ink options.
func (o Options) colors() (data, truth color.Color, err error) {
	dc, err := colorful.Hex(o.Color)
	if err != nil {
		return nil, nil, fmt.Errorf("prism: bad sample color %q: %w", o.Color, err)
	}
	tc, err := colorful.Hex(o.TruthColor)
	if err != nil {
		return nil, nil, fmt.Errorf("prism: bad truth color %q: %w", o.TruthColor, err)
	}
	return dc, tc, nil
}
