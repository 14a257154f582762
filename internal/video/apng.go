package video

import (
	"fmt"
	"image"

	"github.com/setanarut/apng"
)

// apngWriter buffers frames and writes an animated PNG on Close. The
// apng library owns the file handling, so the filesystem abstraction is
// not involved. Buffered frames are referenced, not copied; callers must
// not mutate a frame after handing it over.
type apngWriter struct {
	path string
	fps  int

	size   frameSize
	frames []image.Image
	closed bool
}

func newAPNGWriter(path string, fps int) *apngWriter {
	return &apngWriter{path: path, fps: fps}
}

func (w *apngWriter) AddFrame(img image.Image) error {
	if w.closed {
		return fmt.Errorf("video: write to closed apng writer for %s", w.path)
	}
	if err := w.size.accept(img); err != nil {
		return err
	}
	w.frames = append(w.frames, img)
	return nil
}

func (w *apngWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if len(w.frames) == 0 {
		return fmt.Errorf("video: no frames to encode into %s", w.path)
	}
	if err := apng.Save(w.path, w.frames, uint16(w.fps)); err != nil {
		return fmt.Errorf("video: encode apng %s: %w", w.path, err)
	}
	return nil
}
