// Package binning derives the fixed panel geometry a corner animation
// shares across every frame: per-dimension axis extents, histogram bin
// edges and marginal height caps. Everything is computed once from the
// full chain before any frame is drawn, so panels never rescale as the
// animation plays.
package binning

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/bfarr/prism/cube"
	"github.com/bfarr/prism/internal/monitoring"
)

// maxBins caps the per-dimension bin count so a chain whose final
// iteration collapses to a sliver of the global extent cannot demand an
// absurd number of bins.
const maxBins = 2048

// DimPlan fixes the axis geometry for one dimension.
type DimPlan struct {
	// Min and Max span every sample of the dimension across the whole
	// chain and become the axis limits of each panel that shows it.
	Min float64
	Max float64
	// Edges are the histogram bin boundaries, uniform from Min to Max.
	Edges []float64
	// HeightCap is the y-axis limit for the dimension's marginal panel,
	// 1.1 times the tallest density bin of the final iteration.
	HeightCap float64

	// dividers mirror Edges with the top boundary nudged up one ulp so
	// counting can include samples that sit exactly on Max.
	dividers []float64
	width    float64
}

// Bins returns the dimension's bin count.
func (d DimPlan) Bins() int { return len(d.Edges) - 1 }

// Plan holds the per-dimension geometry for a chain.
type Plan struct {
	dims []DimPlan
}

// NewPlan scans the full chain and fixes the frame geometry. The bin
// width of every dimension is its final-iteration range divided by
// finalBins, so the settled posterior is resolved at that granularity no
// matter how wide the early chain wandered.
func NewPlan(c *cube.Cube, finalBins int) (*Plan, error) {
	if c.Iterations() < 1 || c.Walkers() < 1 || c.Dims() < 1 {
		return nil, fmt.Errorf("binning: empty chain %dx%dx%d", c.Iterations(), c.Walkers(), c.Dims())
	}
	if finalBins < 1 {
		return nil, fmt.Errorf("binning: final bin count %d must be positive", finalBins)
	}

	last := c.Iterations() - 1
	all := make([]float64, c.Iterations()*c.Walkers())
	var final []float64

	plan := &Plan{dims: make([]DimPlan, c.Dims())}
	for d := 0; d < c.Dims(); d++ {
		for t := 0; t <= last; t++ {
			c.Column(t, d, all[t*c.Walkers():(t+1)*c.Walkers()])
		}
		if floats.HasNaN(all) {
			return nil, fmt.Errorf("binning: dimension %d contains NaN samples", d)
		}
		gMin, gMax := floats.Min(all), floats.Max(all)
		if math.IsInf(gMin, 0) || math.IsInf(gMax, 0) {
			return nil, fmt.Errorf("binning: dimension %d contains infinite samples", d)
		}
		if gMax <= gMin {
			return nil, fmt.Errorf("binning: dimension %d has zero dynamic range (all samples %v)", d, gMin)
		}

		final = c.Column(last, d, final)
		fMin, fMax := floats.Min(final), floats.Max(final)
		dx := (fMax - fMin) / float64(finalBins)
		if dx <= 0 {
			return nil, fmt.Errorf("binning: dimension %d has zero dynamic range at the final iteration", d)
		}

		bins := int((gMax - gMin) / dx)
		if bins < finalBins {
			bins = finalBins
		}
		if bins > maxBins {
			monitoring.Debugf("binning: dimension %d wants %d bins, clamping to %d", d, bins, maxBins)
			bins = maxBins
		}

		dp := DimPlan{
			Min:   gMin,
			Max:   gMax,
			Edges: floats.Span(make([]float64, bins+1), gMin, gMax),
			width: (gMax - gMin) / float64(bins),
		}
		dp.dividers = append([]float64(nil), dp.Edges...)
		dp.dividers[bins] = math.Nextafter(gMax, math.Inf(1))

		peak, err := peakDensity(dp, final)
		if err != nil {
			return nil, fmt.Errorf("binning: dimension %d: %w", d, err)
		}
		dp.HeightCap = 1.1 * peak
		plan.dims[d] = dp
	}
	return plan, nil
}

// Dims returns the number of planned dimensions.
func (p *Plan) Dims() int { return len(p.dims) }

// Dim returns the geometry for dimension d.
func (p *Plan) Dim(d int) DimPlan { return p.dims[d] }

// Histogram bins xs with dimension d's fixed edges and returns one
// density per bin, normalized so the densities integrate to one. Samples
// outside the planned extent are an error rather than a silent drop.
func (p *Plan) Histogram(d int, xs []float64) ([]float64, error) {
	if d < 0 || d >= len(p.dims) {
		return nil, fmt.Errorf("binning: dimension %d out of range %d", d, len(p.dims))
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("binning: no samples to bin for dimension %d", d)
	}
	dp := p.dims[d]

	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if sorted[0] < dp.Min || sorted[len(sorted)-1] > dp.Max {
		return nil, fmt.Errorf("binning: dimension %d sample outside planned extent [%v, %v]",
			d, dp.Min, dp.Max)
	}

	counts := stat.Histogram(make([]float64, dp.Bins()), dp.dividers, sorted, nil)
	norm := float64(len(xs)) * dp.width
	for i := range counts {
		counts[i] /= norm
	}
	return counts, nil
}

func peakDensity(dp DimPlan, xs []float64) (float64, error) {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	counts := stat.Histogram(make([]float64, dp.Bins()), dp.dividers, sorted, nil)
	peak := floats.Max(counts) / (float64(len(xs)) * dp.width)
	if peak <= 0 {
		return 0, fmt.Errorf("final iteration produced an empty histogram")
	}
	return peak, nil
}
