// Package chainio loads sample chains from disk and generates synthetic
// ones. Chains arrive either as NumPy .npy arrays, the native dump
// format of ensemble samplers, or as the package's own JSON document.
// Both decode into a cube with iterations, walkers and dimensions in
// that axis order.
package chainio

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sbinet/npyio"

	"github.com/bfarr/prism/cube"
	"github.com/bfarr/prism/internal/fsutil"
)

// Document is the JSON chain format: a shape header, optional dimension
// labels and the samples nested iteration by walker.
type Document struct {
	Iterations int           `json:"iterations"`
	Walkers    int           `json:"walkers"`
	Dims       int           `json:"dims"`
	Labels     []string      `json:"labels,omitempty"`
	Samples    [][][]float64 `json:"samples"`
}

// ReadCube loads a chain from path, picking the decoder from the
// extension: .npy for NumPy arrays, .json for Documents. Labels are only
// available from JSON chains; .npy readers get nil labels.
func ReadCube(path string, fs fsutil.FileSystem) (*cube.Cube, []string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".npy":
		c, err := readNPY(path, fs)
		return c, nil, err
	case ".json":
		return readJSON(path, fs)
	default:
		return nil, nil, fmt.Errorf("chainio: unsupported chain format %q (want .npy or .json)", ext)
	}
}

func readNPY(path string, fs fsutil.FileSystem) (*cube.Cube, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("chainio: open %s: %w", path, err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("chainio: parse npy header of %s: %w", path, err)
	}
	shape := r.Header.Descr.Shape
	if len(shape) != 3 {
		return nil, fmt.Errorf("chainio: %s has shape %v, want 3 axes (iterations, walkers, dims)", path, shape)
	}
	if r.Header.Descr.Fortran {
		return nil, fmt.Errorf("chainio: %s is Fortran-ordered; re-save it C-ordered", path)
	}

	var data []float64
	if err := r.Read(&data); err != nil {
		return nil, fmt.Errorf("chainio: read %s as float64 samples: %w", path, err)
	}
	c, err := cube.FromSlice(data, shape[0], shape[1], shape[2])
	if err != nil {
		return nil, fmt.Errorf("chainio: %s: %w", path, err)
	}
	return c, nil
}

func readJSON(path string, fs fsutil.FileSystem) (*cube.Cube, []string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("chainio: read %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("chainio: parse %s: %w", path, err)
	}
	c, err := doc.Cube()
	if err != nil {
		return nil, nil, fmt.Errorf("chainio: %s: %w", path, err)
	}
	return c, doc.Labels, nil
}

// Cube validates the document shape and converts the nested samples.
// The header counts are optional; when set they must agree with the
// nesting.
func (d *Document) Cube() (*cube.Cube, error) {
	iters := len(d.Samples)
	if iters == 0 {
		return nil, fmt.Errorf("document has no samples")
	}
	walkers := len(d.Samples[0])
	if walkers == 0 {
		return nil, fmt.Errorf("document iteration 0 has no walkers")
	}
	dims := len(d.Samples[0][0])
	if dims == 0 {
		return nil, fmt.Errorf("document walker 0 has no dimensions")
	}

	if d.Iterations != 0 && d.Iterations != iters {
		return nil, fmt.Errorf("header says %d iterations, samples hold %d", d.Iterations, iters)
	}
	if d.Walkers != 0 && d.Walkers != walkers {
		return nil, fmt.Errorf("header says %d walkers, samples hold %d", d.Walkers, walkers)
	}
	if d.Dims != 0 && d.Dims != dims {
		return nil, fmt.Errorf("header says %d dims, samples hold %d", d.Dims, dims)
	}
	if len(d.Labels) != 0 && len(d.Labels) != dims {
		return nil, fmt.Errorf("%d labels for %d dimensions", len(d.Labels), dims)
	}

	c, err := cube.New(iters, walkers, dims)
	if err != nil {
		return nil, err
	}
	for t, iter := range d.Samples {
		if len(iter) != walkers {
			return nil, fmt.Errorf("iteration %d has %d walkers, want %d", t, len(iter), walkers)
		}
		for n, walker := range iter {
			if len(walker) != dims {
				return nil, fmt.Errorf("iteration %d walker %d has %d dims, want %d", t, n, len(walker), dims)
			}
			for dim, v := range walker {
				c.Set(t, n, dim, v)
			}
		}
	}
	return c, nil
}

// WriteCubeJSON saves a chain as an indented Document.
func WriteCubeJSON(path string, c *cube.Cube, labels []string, fs fsutil.FileSystem) error {
	if len(labels) != 0 && len(labels) != c.Dims() {
		return fmt.Errorf("chainio: %d labels for %d dimensions", len(labels), c.Dims())
	}

	doc := Document{
		Iterations: c.Iterations(),
		Walkers:    c.Walkers(),
		Dims:       c.Dims(),
		Labels:     labels,
		Samples:    make([][][]float64, c.Iterations()),
	}
	for t := 0; t < c.Iterations(); t++ {
		doc.Samples[t] = make([][]float64, c.Walkers())
		for n := 0; n < c.Walkers(); n++ {
			row := make([]float64, c.Dims())
			for d := 0; d < c.Dims(); d++ {
				row[d] = c.At(t, n, d)
			}
			doc.Samples[t][n] = row
		}
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("chainio: encode %s: %w", path, err)
	}
	if err := fs.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("chainio: write %s: %w", path, err)
	}
	return nil
}
