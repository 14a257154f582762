// Package cube holds the sample tensors prism animates: a Cube records T
// iterations of an N-walker ensemble exploring a D-dimensional
// distribution. Storage is a single flat float64 slice in [iteration,
// walker, dimension] order, which makes the sample set visible at any
// iteration under any slicing policy a contiguous sub-slice rather than a
// copy.
package cube

import "fmt"

// Cube is an iterations x walkers x dims block of samples. The walker and
// dimension counts are fixed at construction; chains with a different
// ensemble size belong in a different Cube.
type Cube struct {
	data    []float64
	iters   int
	walkers int
	dims    int
}

// New returns a zero-filled cube with the given shape.
func New(iterations, walkers, dims int) (*Cube, error) {
	if iterations < 0 || walkers < 0 || dims < 0 {
		return nil, fmt.Errorf("cube: negative shape %dx%dx%d", iterations, walkers, dims)
	}
	return &Cube{
		data:    make([]float64, iterations*walkers*dims),
		iters:   iterations,
		walkers: walkers,
		dims:    dims,
	}, nil
}

// FromSlice wraps an existing flat sample slice in [iteration, walker,
// dimension] order. The slice is used directly, not copied.
func FromSlice(data []float64, iterations, walkers, dims int) (*Cube, error) {
	if iterations < 0 || walkers < 0 || dims < 0 {
		return nil, fmt.Errorf("cube: negative shape %dx%dx%d", iterations, walkers, dims)
	}
	if len(data) != iterations*walkers*dims {
		return nil, fmt.Errorf("cube: %d samples cannot fill shape %dx%dx%d (want %d)",
			len(data), iterations, walkers, dims, iterations*walkers*dims)
	}
	return &Cube{data: data, iters: iterations, walkers: walkers, dims: dims}, nil
}

// Iterations returns the number of recorded iterations.
func (c *Cube) Iterations() int { return c.iters }

// Walkers returns the ensemble size.
func (c *Cube) Walkers() int { return c.walkers }

// Dims returns the dimensionality of the sampled space.
func (c *Cube) Dims() int { return c.dims }

// At returns the sample for walker n, dimension d at iteration t.
// Out-of-range indices panic.
func (c *Cube) At(t, n, d int) float64 {
	c.check(t, n, d)
	return c.data[(t*c.walkers+n)*c.dims+d]
}

// Set stores a sample for walker n, dimension d at iteration t.
func (c *Cube) Set(t, n, d int, v float64) {
	c.check(t, n, d)
	c.data[(t*c.walkers+n)*c.dims+d] = v
}

func (c *Cube) check(t, n, d int) {
	if t < 0 || t >= c.iters || n < 0 || n >= c.walkers || d < 0 || d >= c.dims {
		panic(fmt.Sprintf("cube: index [%d %d %d] out of range %dx%dx%d",
			t, n, d, c.iters, c.walkers, c.dims))
	}
}

// Matrix returns the walkers x dims sample matrix for iteration t as a view
// backed by the cube's storage.
func (c *Cube) Matrix(t int) Matrix {
	if t < 0 || t >= c.iters {
		panic(fmt.Sprintf("cube: iteration %d out of range %d", t, c.iters))
	}
	off := t * c.walkers * c.dims
	return Matrix{data: c.data[off : off+c.walkers*c.dims], rows: c.walkers, cols: c.dims}
}

// Prefix returns every sample from iteration 0 through t inclusive as a
// ((t+1)*walkers) x dims matrix view.
func (c *Cube) Prefix(t int) Matrix {
	if t < 0 || t >= c.iters {
		panic(fmt.Sprintf("cube: iteration %d out of range %d", t, c.iters))
	}
	rows := (t + 1) * c.walkers
	return Matrix{data: c.data[:rows*c.dims], rows: rows, cols: c.dims}
}

// Column copies the walker values for dimension d at iteration t into dst,
// growing it as needed, and returns the filled slice.
func (c *Cube) Column(t, d int, dst []float64) []float64 {
	if t < 0 || t >= c.iters || d < 0 || d >= c.dims {
		panic(fmt.Sprintf("cube: column [%d %d] out of range %dx%dx%d",
			t, d, c.iters, c.walkers, c.dims))
	}
	if cap(dst) < c.walkers {
		dst = make([]float64, c.walkers)
	}
	dst = dst[:c.walkers]
	base := t * c.walkers * c.dims
	for n := 0; n < c.walkers; n++ {
		dst[n] = c.data[base+n*c.dims+d]
	}
	return dst
}

// Thin returns a copy keeping every stride-th iteration starting from the
// first, matching slice-with-stride semantics. A stride below 2 returns the
// receiver unchanged.
func (c *Cube) Thin(stride int) *Cube {
	if stride < 2 {
		return c
	}
	kept := (c.iters + stride - 1) / stride
	out := &Cube{
		data:    make([]float64, kept*c.walkers*c.dims),
		iters:   kept,
		walkers: c.walkers,
		dims:    c.dims,
	}
	frame := c.walkers * c.dims
	for i := 0; i < kept; i++ {
		src := i * stride * frame
		copy(out.data[i*frame:(i+1)*frame], c.data[src:src+frame])
	}
	return out
}

// Matrix is a rows x cols view over sample storage.
type Matrix struct {
	data []float64
	rows int
	cols int
}

// Rows returns the number of sample rows in the view.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of dimensions in the view.
func (m Matrix) Cols() int { return m.cols }

// At returns the sample at row r, column c. Out-of-range indices panic.
func (m Matrix) At(r, c int) float64 {
	if r < 0 || r >= m.rows || c < 0 || c >= m.cols {
		panic(fmt.Sprintf("cube: matrix index [%d %d] out of range %dx%d", r, c, m.rows, m.cols))
	}
	return m.data[r*m.cols+c]
}

// Col copies column c into dst, growing it as needed, and returns the
// filled slice.
func (m Matrix) Col(c int, dst []float64) []float64 {
	if c < 0 || c >= m.cols {
		panic(fmt.Sprintf("cube: matrix column %d out of range %d", c, m.cols))
	}
	if cap(dst) < m.rows {
		dst = make([]float64, m.rows)
	}
	dst = dst[:m.rows]
	for r := 0; r < m.rows; r++ {
		dst[r] = m.data[r*m.cols+c]
	}
	return dst
}
