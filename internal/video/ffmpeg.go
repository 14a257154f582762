package video

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strconv"
)

// ffmpegWriter streams raw RGBA frames to an ffmpeg process encoding
// H.264. The process starts lazily on the first frame, once the frame
// size is known, and the output file appears when Close waits for the
// encoder to finish.
type ffmpegWriter struct {
	path string
	fps  int

	size   frameSize
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	packed *image.RGBA
	closed bool
}

func newFFmpegWriter(path string, fps int) *ffmpegWriter {
	return &ffmpegWriter{path: path, fps: fps}
}

func (w *ffmpegWriter) start() error {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("video: %s needs an ffmpeg binary on PATH: %w", w.path, err)
	}

	cmd := exec.Command(bin,
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", w.size.w, w.size.h),
		"-framerate", strconv.Itoa(w.fps),
		"-i", "-",
		"-vcodec", "libx264",
		"-pix_fmt", "yuv420p",
		w.path,
	)
	cmd.Stderr = &w.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("video: open ffmpeg stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("video: start ffmpeg: %w", err)
	}
	w.cmd = cmd
	w.stdin = stdin
	return nil
}

func (w *ffmpegWriter) AddFrame(img image.Image) error {
	if w.closed {
		return fmt.Errorf("video: write to closed ffmpeg writer for %s", w.path)
	}
	if err := w.size.accept(img); err != nil {
		return err
	}
	if w.cmd == nil {
		// libx264 with yuv420p subsampling cannot encode odd dimensions.
		if w.size.w%2 != 0 || w.size.h%2 != 0 {
			return fmt.Errorf("video: %s: H.264 output needs even frame dimensions, got %dx%d",
				w.path, w.size.w, w.size.h)
		}
		if err := w.start(); err != nil {
			return err
		}
	}

	if _, err := w.stdin.Write(w.rawRGBA(img)); err != nil {
		return fmt.Errorf("video: stream frame to ffmpeg: %w%s", err, w.stderrTail())
	}
	return nil
}

// rawRGBA returns the frame as tightly packed RGBA bytes, repacking
// through a reused buffer when the source is not already in that layout.
func (w *ffmpegWriter) rawRGBA(img image.Image) []byte {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*w.size.w {
		return rgba.Pix
	}
	if w.packed == nil {
		w.packed = image.NewRGBA(image.Rect(0, 0, w.size.w, w.size.h))
	}
	draw.Draw(w.packed, w.packed.Bounds(), img, img.Bounds().Min, draw.Src)
	return w.packed.Pix
}

func (w *ffmpegWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.cmd == nil {
		return fmt.Errorf("video: no frames to encode into %s", w.path)
	}

	if err := w.stdin.Close(); err != nil {
		w.cmd.Wait()
		return fmt.Errorf("video: close ffmpeg stdin: %w", err)
	}
	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("video: ffmpeg failed for %s: %w%s", w.path, err, w.stderrTail())
	}
	return nil
}

func (w *ffmpegWriter) stderrTail() string {
	s := bytes.TrimSpace(w.stderr.Bytes())
	if len(s) == 0 {
		return ""
	}
	const keep = 512
	if len(s) > keep {
		s = s[len(s)-keep:]
	}
	return ": " + string(s)
}
