package video

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"
)

// aviWriter encodes frames as JPEGs inside a motion-JPEG AVI. The mjpeg
// library opens the output path itself, so this writer does not go
// through the filesystem abstraction. The underlying file is only
// created once the first frame arrives and its dimensions are known.
type aviWriter struct {
	path    string
	fps     int
	quality int

	size   frameSize
	avi    mjpeg.AviWriter
	buf    bytes.Buffer
	closed bool
}

func newAVIWriter(path string, fps, quality int) *aviWriter {
	return &aviWriter{path: path, fps: fps, quality: quality}
}

func (w *aviWriter) AddFrame(img image.Image) error {
	if w.closed {
		return fmt.Errorf("video: write to closed avi writer for %s", w.path)
	}
	if err := w.size.accept(img); err != nil {
		return err
	}
	if w.avi == nil {
		avi, err := mjpeg.New(w.path, int32(w.size.w), int32(w.size.h), int32(w.fps))
		if err != nil {
			return fmt.Errorf("video: create avi %s: %w", w.path, err)
		}
		w.avi = avi
	}

	w.buf.Reset()
	if err := jpeg.Encode(&w.buf, img, &jpeg.Options{Quality: w.quality}); err != nil {
		return fmt.Errorf("video: encode avi frame: %w", err)
	}
	if err := w.avi.AddFrame(w.buf.Bytes()); err != nil {
		return fmt.Errorf("video: append avi frame: %w", err)
	}
	return nil
}

func (w *aviWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.avi == nil {
		return fmt.Errorf("video: no frames to encode into %s", w.path)
	}
	if err := w.avi.Close(); err != nil {
		return fmt.Errorf("video: finalize avi %s: %w", w.path, err)
	}
	return nil
}
