// Package overlay stamps frame decorations onto rendered corner plots:
// an iteration counter, a playback progress bar and eased crossfade
// frames between iterations. All drawing happens directly on the frame's
// pixels after the plot rasterizer is done with it.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	imdraw "image/draw"

	"github.com/fogleman/ease"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Counter stamps the iteration label in the frame's top-right corner on a
// translucent backing box so it stays readable over plot ink.
func Counter(img *image.RGBA, label string) {
	face := basicfont.Face7x13
	textWidth := len(label) * 7
	textHeight := 13

	b := img.Bounds()
	x := b.Max.X - textWidth - 8
	y := b.Min.Y + 6
	if x < b.Min.X {
		x = b.Min.X
	}

	bg := image.Rect(x-4, y-4, x+textWidth+4, y+textHeight+4).Intersect(b)
	imdraw.Draw(img, bg, &image.Uniform{color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xd0}}, image.Point{}, imdraw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y + textHeight)},
	}
	d.DrawString(label)
}

// barHeight is the progress bar thickness in pixels.
const barHeight = 4

// ProgressBar draws playback progress along the frame's bottom edge.
// frac is clamped to [0, 1].
func ProgressBar(img *image.RGBA, frac float64) {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	b := img.Bounds()
	dc := gg.NewContextForRGBA(img)

	dc.SetRGBA(0.85, 0.85, 0.85, 1)
	dc.DrawRectangle(0, float64(b.Dy()-barHeight), float64(b.Dx()), barHeight)
	dc.Fill()

	// Steel blue, matching the truth cross-hair color.
	dc.SetRGBA255(0x46, 0x82, 0xb4, 0xff)
	dc.DrawRectangle(0, float64(b.Dy()-barHeight), frac*float64(b.Dx()), barHeight)
	dc.Fill()
}

// Crossfade blends two equally sized frames, alpha 0 giving a and alpha 1
// giving b.
func Crossfade(a, b *image.RGBA, alpha float64) *image.RGBA {
	if a.Bounds() != b.Bounds() {
		panic(fmt.Sprintf("overlay: crossfade bounds mismatch %v vs %v", a.Bounds(), b.Bounds()))
	}
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	out := image.NewRGBA(a.Bounds())
	for i := range out.Pix {
		av := float64(a.Pix[i])
		bv := float64(b.Pix[i])
		out.Pix[i] = uint8(av + (bv-av)*alpha + 0.5)
	}
	return out
}

// CrossfadeSequence returns steps intermediate frames easing from a to b,
// excluding both endpoints. The ease-in-out curve makes walker jumps read
// as motion instead of flicker.
func CrossfadeSequence(a, b *image.RGBA, steps int) []*image.RGBA {
	if steps < 1 {
		return nil
	}
	frames := make([]*image.RGBA, 0, steps)
	for k := 1; k <= steps; k++ {
		t := float64(k) / float64(steps+1)
		frames = append(frames, Crossfade(a, b, ease.InOutQuad(t)))
	}
	return frames
}
