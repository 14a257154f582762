// Package report renders a convergence trace page to sit next to an
// animation: one line chart per dimension showing the walker ensemble's
// mean across iterations with a one-sigma band around it. A chain that
// has converged shows the band settling to a constant width around a
// flat mean.
package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"

	"github.com/bfarr/prism/cube"
	"github.com/bfarr/prism/internal/fsutil"
)

// maxPoints bounds the chart payload; longer chains are strided down.
const maxPoints = 2000

// Convergence writes an HTML page with one trace chart per chain
// dimension to path. Labels name the charts and may be empty; when
// present the length must match the chain's dimensions.
func Convergence(path string, c *cube.Cube, labels []string, fs fsutil.FileSystem) error {
	if c == nil {
		return fmt.Errorf("report: nil sample cube")
	}
	if c.Iterations() < 1 || c.Walkers() < 1 || c.Dims() < 1 {
		return fmt.Errorf("report: chain is %dx%dx%d; nothing to trace",
			c.Iterations(), c.Walkers(), c.Dims())
	}
	if len(labels) != 0 && len(labels) != c.Dims() {
		return fmt.Errorf("report: %d labels for a %d-dimensional chain", len(labels), c.Dims())
	}

	stride := 1
	if c.Iterations() > maxPoints {
		stride = (c.Iterations() + maxPoints - 1) / maxPoints
	}

	page := components.NewPage()
	page.PageTitle = "prism convergence traces"
	for d := 0; d < c.Dims(); d++ {
		name := fmt.Sprintf("dimension %d", d)
		if len(labels) != 0 {
			name = labels[d]
		}
		page.AddCharts(traceChart(c, d, name, stride))
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("report: render %s: %w", path, err)
	}
	if err := fs.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

// traceChart builds the mean ± sigma line chart for one dimension.
func traceChart(c *cube.Cube, d int, name string, stride int) *charts.Line {
	var x []string
	var mean, upper, lower []opts.LineData

	col := make([]float64, c.Walkers())
	for t := 0; t < c.Iterations(); t += stride {
		c.Column(t, d, col)
		mu := stat.Mean(col, nil)
		sigma := 0.0
		if len(col) > 1 {
			sigma = stat.StdDev(col, nil)
		}

		x = append(x, strconv.Itoa(t))
		mean = append(mean, opts.LineData{Value: mu})
		upper = append(upper, opts.LineData{Value: mu + sigma})
		lower = append(lower, opts.LineData{Value: mu - sigma})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: fmt.Sprintf("walker mean ± 1σ, stride %d", stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "iteration"}),
		charts.WithYAxisOpts(opts.YAxis{Name: name}),
	)
	line.SetXAxis(x).
		AddSeries("mean", mean).
		AddSeries("mean+σ", upper, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})).
		AddSeries("mean-σ", lower, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	return line
}
