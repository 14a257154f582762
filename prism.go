package prism

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gonum.org/v1/plot/vg"

	"github.com/bfarr/prism/cube"
	"github.com/bfarr/prism/internal/binning"
	"github.com/bfarr/prism/internal/fsutil"
	"github.com/bfarr/prism/internal/monitoring"
	"github.com/bfarr/prism/internal/overlay"
	"github.com/bfarr/prism/internal/render"
)

// Sentinel errors for chains no animation can be built from.
var (
	ErrNoIterations = errors.New("prism: chain has no iterations")
	ErrNoWalkers    = errors.New("prism: chain has no walkers")
	ErrNoDimensions = errors.New("prism: chain has no dimensions")
)

// Corner renders one corner-plot frame per chain iteration and collects
// them into an Animation. The lower-triangle grid holds a marginal
// histogram per dimension on the diagonal and a pairwise scatter below
// it; axis extents, bin edges and histogram height caps are fixed from
// the full chain before the first frame, so only the samples move.
//
// Long chains are strided down so playback lasts roughly
// Options.RoughSeconds; geometry is always derived from the unthinned
// chain first.
func Corner(c *cube.Cube, opts Options) (*Animation, error) {
	if c == nil {
		return nil, fmt.Errorf("prism: nil sample cube")
	}
	if c.Iterations() < 1 {
		return nil, fmt.Errorf("%w (chain is %dx%dx%d)", ErrNoIterations, c.Iterations(), c.Walkers(), c.Dims())
	}
	if c.Walkers() < 1 {
		return nil, fmt.Errorf("%w (chain is %dx%dx%d)", ErrNoWalkers, c.Iterations(), c.Walkers(), c.Dims())
	}
	if c.Dims() < 1 {
		return nil, fmt.Errorf("%w (chain is %dx%dx%d)", ErrNoDimensions, c.Iterations(), c.Walkers(), c.Dims())
	}

	opts = opts.withDefaults()
	if err := opts.validate(c.Dims()); err != nil {
		return nil, err
	}
	dataColor, truthColor, err := opts.colors()
	if err != nil {
		return nil, err
	}

	plan, err := binning.NewPlan(c, opts.FinalBins)
	if err != nil {
		return nil, fmt.Errorf("prism: %w", err)
	}

	total := c.Iterations()
	work := c
	stride := 1
	if opts.RoughSeconds > 0 {
		if stride = thinStride(total, opts.RoughSeconds, opts.FPS); stride > 1 {
			work = c.Thin(stride)
			monitoring.Logf("prism: thinning %d iterations by %d to %d frames (~%.1fs at %d fps)",
				total, stride, work.Iterations(), float64(work.Iterations())/float64(opts.FPS), opts.FPS)
		}
	}

	r, err := render.New(render.Config{
		Plan:          plan,
		Labels:        opts.Labels,
		Truths:        opts.Truths,
		DataColor:     dataColor,
		TruthColor:    truthColor,
		MarkerRadius:  vg.Points(opts.MarkerSize),
		PanelSize:     opts.PanelSize,
		DPI:           opts.DPI,
		ColorByWalker: opts.ColorByWalker,
		Walkers:       c.Walkers(),
	})
	if err != nil {
		return nil, fmt.Errorf("prism: %w", err)
	}

	frames := make([]*image.RGBA, 0, work.Iterations())
	var prev *image.RGBA
	for t := 0; t < work.Iterations(); t++ {
		img, err := r.Frame(work.Visible(opts.Policy, opts.WindowSize, t))
		if err != nil {
			return nil, fmt.Errorf("prism: frame %d: %w", t, err)
		}
		if opts.ShowCounter {
			overlay.Counter(img, fmt.Sprintf("%d / %d", t*stride+1, total))
		}
		if opts.ShowProgress {
			overlay.ProgressBar(img, float64(t+1)/float64(work.Iterations()))
		}
		if prev != nil && opts.CrossfadeFrames > 0 {
			frames = append(frames, overlay.CrossfadeSequence(prev, img, opts.CrossfadeFrames)...)
		}
		frames = append(frames, img)
		prev = img
		monitoring.Debugf("prism: rendered frame %d/%d", t+1, work.Iterations())
	}

	return &Animation{
		frames:      frames,
		fps:         opts.FPS,
		jpegQuality: opts.JPEGQuality,
		fs:          fsutil.OSFileSystem{},
	}, nil
}

// thinStride picks the iteration stride that brings playback close to
// roughSeconds at the given rate. Chains already short enough keep every
// iteration.
func thinStride(iterations int, roughSeconds float64, fps int) int {
	stride := int(math.Floor(math.Floor(float64(iterations)/roughSeconds) / float64(fps)))
	if stride < 1 {
		return 1
	}
	return stride
}
