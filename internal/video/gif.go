package video

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/color/palette"
	"math"

	"github.com/bfarr/prism/internal/fsutil"
)

// gifWriter buffers quantized frames and encodes an animated GIF on
// Close. GIF delays have centisecond resolution, so the effective
// playback rate is the closest representable one.
type gifWriter struct {
	path  string
	fs    fsutil.FileSystem
	delay int

	size   frameSize
	anim   gif.GIF
	closed bool
}

func newGIFWriter(path string, fps int, fs fsutil.FileSystem) *gifWriter {
	delay := int(math.Round(100 / float64(fps)))
	if delay < 1 {
		delay = 1
	}
	return &gifWriter{path: path, fs: fs, delay: delay}
}

func (w *gifWriter) AddFrame(img image.Image) error {
	if w.closed {
		return fmt.Errorf("video: write to closed gif writer for %s", w.path)
	}
	if err := w.size.accept(img); err != nil {
		return err
	}

	rect := image.Rect(0, 0, w.size.w, w.size.h)
	pal := image.NewPaletted(rect, palette.Plan9)
	draw.FloydSteinberg.Draw(pal, rect, img, img.Bounds().Min)

	w.anim.Image = append(w.anim.Image, pal)
	w.anim.Delay = append(w.anim.Delay, w.delay)
	return nil
}

func (w *gifWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if len(w.anim.Image) == 0 {
		return fmt.Errorf("video: no frames to encode into %s", w.path)
	}

	f, err := w.fs.Create(w.path)
	if err != nil {
		return fmt.Errorf("video: create gif %s: %w", w.path, err)
	}
	w.anim.LoopCount = 0 // loop forever
	if err := gif.EncodeAll(f, &w.anim); err != nil {
		f.Close()
		return fmt.Errorf("video: encode gif %s: %w", w.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("video: finalize gif %s: %w", w.path, err)
	}
	return nil
}
