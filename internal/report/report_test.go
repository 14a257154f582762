package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfarr/prism/cube"
	"github.com/bfarr/prism/internal/fsutil"
)

// rampCube builds a T x N x D chain whose values are distinct enough to
// give every dimension a visible trace.
func rampCube(t *testing.T, iters, walkers, dims int) *cube.Cube {
	t.Helper()

	c, err := cube.New(iters, walkers, dims)
	require.NoError(t, err)
	for it := 0; it < iters; it++ {
		for n := 0; n < walkers; n++ {
			for d := 0; d < dims; d++ {
				c.Set(it, n, d, float64(it)+0.1*float64(n)+10*float64(d))
			}
		}
	}
	return c
}

func TestConvergenceOneChartPerDimension(t *testing.T) {
	t.Parallel()

	fs := fsutil.NewMemoryFileSystem()
	labels := []string{"mass", "radius", "spin"}
	require.NoError(t, Convergence("traces.html", rampCube(t, 20, 4, 3), labels, fs))

	data, err := fs.ReadFile("traces.html")
	require.NoError(t, err)
	html := string(data)

	for _, label := range labels {
		assert.Contains(t, html, label)
	}
	// One container div per chart.
	assert.Equal(t, 3, strings.Count(html, `class="container"`))
}

func TestConvergenceUnlabeled(t *testing.T) {
	t.Parallel()

	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, Convergence("traces.html", rampCube(t, 5, 3, 2), nil, fs))

	data, err := fs.ReadFile("traces.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "dimension 0")
	assert.Contains(t, string(data), "dimension 1")
}

func TestConvergenceRejectsBadInput(t *testing.T) {
	t.Parallel()

	fs := fsutil.NewMemoryFileSystem()

	t.Run("nil cube", func(t *testing.T) {
		err := Convergence("traces.html", nil, nil, fs)
		assert.ErrorContains(t, err, "nil sample cube")
	})

	t.Run("empty cube", func(t *testing.T) {
		c, err := cube.New(0, 4, 2)
		require.NoError(t, err)
		err = Convergence("traces.html", c, nil, fs)
		assert.ErrorContains(t, err, "nothing to trace")
		assert.False(t, fs.Exists("traces.html"))
	})

	t.Run("label count mismatch", func(t *testing.T) {
		err := Convergence("traces.html", rampCube(t, 5, 3, 2), []string{"only one"}, fs)
		assert.ErrorContains(t, err, "labels")
	})
}

func TestConvergenceStridesLongChains(t *testing.T) {
	t.Parallel()

	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, Convergence("traces.html", rampCube(t, 2*maxPoints, 2, 1), nil, fs))

	data, err := fs.ReadFile("traces.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "stride 2")
}

func TestConvergenceSingleWalkerHasNoNaN(t *testing.T) {
	t.Parallel()

	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, Convergence("traces.html", rampCube(t, 10, 1, 2), nil, fs))

	data, err := fs.ReadFile("traces.html")
	require.NoError(t, err)
	assert.NotContains(t, string(data), "NaN")
}
