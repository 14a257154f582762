package cube

import (
	"fmt"
	"strings"
)

// SlicePolicy selects which samples are visible when a frame is drawn for
// iteration t.
type SlicePolicy int

const (
	// Snapshot shows only the walker ensemble at iteration t.
	Snapshot SlicePolicy = iota
	// Cumulative shows every sample from iteration 0 through t.
	Cumulative
	// Window shows the samples from the most recent K iterations up to t.
	Window
)

// String returns the lower-case policy name.
func (p SlicePolicy) String() string {
	switch p {
	case Snapshot:
		return "snapshot"
	case Cumulative:
		return "cumulative"
	case Window:
		return "window"
	default:
		return fmt.Sprintf("SlicePolicy(%d)", int(p))
	}
}

// Valid reports whether p is one of the defined policies.
func (p SlicePolicy) Valid() bool {
	return p == Snapshot || p == Cumulative || p == Window
}

// ParsePolicy maps a policy name to its SlicePolicy, ignoring case.
func ParsePolicy(s string) (SlicePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "snapshot":
		return Snapshot, nil
	case "cumulative":
		return Cumulative, nil
	case "window":
		return Window, nil
	default:
		return 0, fmt.Errorf("cube: unknown slice policy %q (want snapshot, cumulative or window)", s)
	}
}

// Visible returns the sample matrix a frame for iteration t should draw
// under policy p. The window size is only consulted for the Window policy
// and must be positive there. All three policies return views over the
// cube's storage.
func (c *Cube) Visible(p SlicePolicy, window, t int) Matrix {
	switch p {
	case Snapshot:
		return c.Matrix(t)
	case Cumulative:
		return c.Prefix(t)
	case Window:
		if window < 1 {
			panic(fmt.Sprintf("cube: window size %d must be positive", window))
		}
		start := t - window + 1
		if start < 0 {
			start = 0
		}
		if t < 0 || t >= c.iters {
			panic(fmt.Sprintf("cube: iteration %d out of range %d", t, c.iters))
		}
		rows := (t - start + 1) * c.walkers
		off := start * c.walkers * c.dims
		return Matrix{data: c.data[off : off+rows*c.dims], rows: rows, cols: c.dims}
	default:
		panic(fmt.Sprintf("cube: invalid slice policy %d", int(p)))
	}
}
