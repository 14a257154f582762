package prism

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/bfarr/prism/cube"
)

// convergingCube builds a deterministic chain whose walkers contract
// toward fixed targets, the shape a sampler's burn-in actually has.
func convergingCube(t *testing.T, iters, walkers, dims int) *cube.Cube {
	t.Helper()
	c, err := cube.New(iters, walkers, dims)
	require.NoError(t, err)
	for ti := 0; ti < iters; ti++ {
		shrink := 1.0 / float64(ti+1)
		for n := 0; n < walkers; n++ {
			spread := (2*float64(n)/float64(walkers-1) - 1)
			for d := 0; d < dims; d++ {
				target := float64(d) * 3
				c.Set(ti, n, d, target+spread*(8-float64(d))*shrink)
			}
		}
	}
	return c
}

// fastOptions keeps test renders small.
func fastOptions() Options {
	return Options{
		PanelSize:    vg.Inch,
		DPI:          72,
		FinalBins:    10,
		RoughSeconds: -1,
	}
}

// TestCorner tests the frame sequencing contract.
func TestCorner(t *testing.T) {
	t.Parallel()

	t.Run("one frame per iteration", func(t *testing.T) {
		t.Parallel()
		c := convergingCube(t, 4, 6, 2)
		anim, err := Corner(c, fastOptions())
		require.NoError(t, err)
		assert.Equal(t, 4, anim.FrameCount())
		assert.Equal(t, DefaultFPS, anim.FPS())
	})

	t.Run("frames share fixed dimensions", func(t *testing.T) {
		t.Parallel()
		c := convergingCube(t, 3, 6, 2)
		anim, err := Corner(c, fastOptions())
		require.NoError(t, err)

		want := anim.Frame(0).Bounds()
		assert.Equal(t, 144, want.Dx(), "2 dims x 1 inch x 72 dpi")
		for i := 1; i < anim.FrameCount(); i++ {
			assert.Equal(t, want, anim.Frame(i).Bounds())
		}
	})

	t.Run("rendering is deterministic", func(t *testing.T) {
		t.Parallel()
		c := convergingCube(t, 3, 6, 2)
		a, err := Corner(c, fastOptions())
		require.NoError(t, err)
		b, err := Corner(c, fastOptions())
		require.NoError(t, err)

		require.Equal(t, a.FrameCount(), b.FrameCount())
		for i := 0; i < a.FrameCount(); i++ {
			assert.True(t, bytes.Equal(a.Frame(i).Pix, b.Frame(i).Pix), "frame %d differs", i)
		}
	})

	t.Run("later frames differ from early ones", func(t *testing.T) {
		t.Parallel()
		c := convergingCube(t, 3, 6, 2)
		anim, err := Corner(c, fastOptions())
		require.NoError(t, err)
		assert.False(t, bytes.Equal(anim.Frame(0).Pix, anim.Frame(2).Pix))
	})

	t.Run("labels truths and walker colors render", func(t *testing.T) {
		t.Parallel()
		c := convergingCube(t, 3, 6, 2)
		opts := fastOptions()
		opts.Labels = []string{"m", "b"}
		opts.Truths = []float64{0, 3}
		opts.ColorByWalker = true
		anim, err := Corner(c, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, anim.FrameCount())
	})
}

// TestCornerPolicies tests the cumulative and windowed slicing modes.
func TestCornerPolicies(t *testing.T) {
	t.Parallel()

	c := convergingCube(t, 4, 6, 2)

	snap, err := Corner(c, fastOptions())
	require.NoError(t, err)

	t.Run("cumulative keeps early samples visible", func(t *testing.T) {
		t.Parallel()
		opts := fastOptions()
		opts.Policy = cube.Cumulative
		cum, err := Corner(c, opts)
		require.NoError(t, err)

		require.Equal(t, snap.FrameCount(), cum.FrameCount())
		assert.True(t, bytes.Equal(snap.Frame(0).Pix, cum.Frame(0).Pix),
			"first frames show the same single iteration")
		assert.False(t, bytes.Equal(snap.Frame(3).Pix, cum.Frame(3).Pix),
			"later cumulative frames must include the early cloud")
	})

	t.Run("window tracks a trailing slice", func(t *testing.T) {
		t.Parallel()
		opts := fastOptions()
		opts.Policy = cube.Window
		opts.WindowSize = 2
		win, err := Corner(c, opts)
		require.NoError(t, err)
		assert.Equal(t, 4, win.FrameCount())
	})

	t.Run("window requires a size", func(t *testing.T) {
		t.Parallel()
		opts := fastOptions()
		opts.Policy = cube.Window
		_, err := Corner(c, opts)
		assert.ErrorContains(t, err, "WindowSize")
	})
}

// TestCornerDecorations tests the counter, progress bar and crossfade
// paths.
func TestCornerDecorations(t *testing.T) {
	t.Parallel()

	c := convergingCube(t, 3, 6, 2)

	plain, err := Corner(c, fastOptions())
	require.NoError(t, err)

	t.Run("counter and progress leave marks", func(t *testing.T) {
		t.Parallel()
		opts := fastOptions()
		opts.ShowCounter = true
		opts.ShowProgress = true
		dec, err := Corner(c, opts)
		require.NoError(t, err)
		assert.False(t, bytes.Equal(plain.Frame(0).Pix, dec.Frame(0).Pix))
	})

	t.Run("crossfade inserts in-between frames", func(t *testing.T) {
		t.Parallel()
		opts := fastOptions()
		opts.CrossfadeFrames = 2
		faded, err := Corner(c, opts)
		require.NoError(t, err)
		// 3 source frames with 2 blends in each of the 2 gaps.
		assert.Equal(t, 7, faded.FrameCount())
	})
}

// TestCornerThinning tests the playback-length stride heuristic.
func TestCornerThinning(t *testing.T) {
	t.Parallel()

	t.Run("long chains are strided down", func(t *testing.T) {
		t.Parallel()
		c := convergingCube(t, 40, 4, 1)
		opts := fastOptions()
		opts.RoughSeconds = 0.1
		opts.FPS = 30
		anim, err := Corner(c, opts)
		require.NoError(t, err)
		// stride 13 keeps iterations 0, 13, 26 and 39.
		assert.Equal(t, 4, anim.FrameCount())
	})

	t.Run("short chains keep every iteration", func(t *testing.T) {
		t.Parallel()
		c := convergingCube(t, 40, 4, 1)
		opts := fastOptions()
		opts.RoughSeconds = DefaultRoughSeconds
		anim, err := Corner(c, opts)
		require.NoError(t, err)
		assert.Equal(t, 40, anim.FrameCount())
	})

	t.Run("negative rough seconds disables thinning", func(t *testing.T) {
		t.Parallel()
		c := convergingCube(t, 40, 4, 1)
		opts := fastOptions()
		opts.RoughSeconds = -1
		anim, err := Corner(c, opts)
		require.NoError(t, err)
		assert.Equal(t, 40, anim.FrameCount())
	})
}

// TestThinStride tests the stride arithmetic itself.
func TestThinStride(t *testing.T) {
	t.Parallel()

	cases := []struct {
		iterations int
		rough      float64
		fps        int
		want       int
	}{
		{9000, 10, 30, 30},
		{40, 10, 30, 1},
		{40, 0.1, 30, 13},
		{299, 10, 30, 1},
		{600, 10, 30, 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, thinStride(tc.iterations, tc.rough, tc.fps),
			"thinStride(%d, %v, %d)", tc.iterations, tc.rough, tc.fps)
	}
}

// TestCornerErrors tests fail-fast rejection of unusable chains.
func TestCornerErrors(t *testing.T) {
	t.Parallel()

	t.Run("nil cube", func(t *testing.T) {
		t.Parallel()
		_, err := Corner(nil, Options{})
		assert.Error(t, err)
	})

	t.Run("no iterations", func(t *testing.T) {
		t.Parallel()
		c, err := cube.New(0, 4, 2)
		require.NoError(t, err)
		_, err = Corner(c, Options{})
		assert.ErrorIs(t, err, ErrNoIterations)
	})

	t.Run("no walkers", func(t *testing.T) {
		t.Parallel()
		c, err := cube.New(3, 0, 2)
		require.NoError(t, err)
		_, err = Corner(c, Options{})
		assert.ErrorIs(t, err, ErrNoWalkers)
	})

	t.Run("no dimensions", func(t *testing.T) {
		t.Parallel()
		c, err := cube.New(3, 4, 0)
		require.NoError(t, err)
		_, err = Corner(c, Options{})
		assert.ErrorIs(t, err, ErrNoDimensions)
	})

	t.Run("NaN samples", func(t *testing.T) {
		t.Parallel()
		c := convergingCube(t, 3, 6, 2)
		c.Set(1, 2, 0, math.NaN())
		_, err := Corner(c, fastOptions())
		assert.ErrorContains(t, err, "NaN")
	})

	t.Run("constant dimension", func(t *testing.T) {
		t.Parallel()
		c, err := cube.New(3, 4, 1)
		require.NoError(t, err)
		_, err = Corner(c, fastOptions())
		assert.ErrorContains(t, err, "zero dynamic range")
	})

	t.Run("label mismatch", func(t *testing.T) {
		t.Parallel()
		c := convergingCube(t, 3, 6, 2)
		opts := fastOptions()
		opts.Labels = []string{"only one"}
		_, err := Corner(c, opts)
		assert.ErrorContains(t, err, "labels")
	})

	t.Run("bad color", func(t *testing.T) {
		t.Parallel()
		c := convergingCube(t, 3, 6, 2)
		opts := fastOptions()
		opts.Color = "magenta-ish"
		_, err := Corner(c, opts)
		assert.ErrorContains(t, err, "color")
	})
}
