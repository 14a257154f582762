package chainio

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bfarr/prism/cube"
)

// Demo synthesizes a converging chain for trying the renderer without a
// real sampler run. Walkers start scattered around the per-dimension
// targets and relax toward them, so early frames are diffuse and late
// frames are tight. The same seed always produces the same chain.
//
// Returned alongside the cube are dimension labels ("x0", "x1", ...)
// and the targets the walkers converge on.
func Demo(iterations, walkers, dims int, seed uint64) (*cube.Cube, []string, []float64, error) {
	c, err := cube.New(iterations, walkers, dims)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("chainio: demo chain: %w", err)
	}

	noise := distuv.Normal{
		Mu:    0,
		Sigma: 1,
		Src:   rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}

	labels := make([]string, dims)
	targets := make([]float64, dims)
	for d := range targets {
		labels[d] = fmt.Sprintf("x%d", d)
		targets[d] = 3 * float64(d)
	}

	state := make([]float64, walkers*dims)
	for i := range state {
		state[i] = targets[i%dims] + 10*noise.Rand()
	}

	for t := 0; t < iterations; t++ {
		for n := 0; n < walkers; n++ {
			for d := 0; d < dims; d++ {
				x := state[n*dims+d]
				x += 0.3*(targets[d]-x) + 0.25*noise.Rand()
				state[n*dims+d] = x
				c.Set(t, n, d, x)
			}
		}
	}
	return c, labels, targets, nil
}
