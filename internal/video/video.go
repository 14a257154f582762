// Package video encodes a stream of rendered frames into an animation
// file. The container is picked from the output path's extension:
// motion-JPEG AVI, animated GIF and animated PNG are encoded in-process,
// while the H.264 family (.mp4, .m4v, .mov, .mkv, .webm) pipes raw
// frames to an ffmpeg binary on PATH. Every writer fixes its frame
// dimensions from the first frame it sees and rejects later frames of a
// different size.
package video

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/bfarr/prism/internal/fsutil"
)

// Writer accepts frames one at a time and finalizes the file on Close.
// AddFrame must not be called after Close. Closing a writer that never
// received a frame is an error, since no decodable file can come of it.
type Writer interface {
	AddFrame(img image.Image) error
	Close() error
}

// Options tune encoding without changing the container choice.
type Options struct {
	// JPEGQuality sets the per-frame JPEG quality for AVI output,
	// 1 to 100. Zero means 90.
	JPEGQuality int

	// FS is used by encoders that stream through the filesystem
	// abstraction. Nil means the real filesystem. Encoders wrapping
	// libraries that open paths themselves ignore it.
	FS fsutil.FileSystem
}

// NewWriter picks an encoder for path by extension. fps is the playback
// rate stamped into the container.
func NewWriter(path string, fps int, opts Options) (Writer, error) {
	if fps < 1 {
		return nil, fmt.Errorf("video: fps %d must be positive", fps)
	}
	if opts.JPEGQuality == 0 {
		opts.JPEGQuality = 90
	}
	if opts.JPEGQuality < 1 || opts.JPEGQuality > 100 {
		return nil, fmt.Errorf("video: jpeg quality %d outside 1..100", opts.JPEGQuality)
	}
	if opts.FS == nil {
		opts.FS = fsutil.OSFileSystem{}
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".avi":
		return newAVIWriter(path, fps, opts.JPEGQuality), nil
	case ".gif":
		return newGIFWriter(path, fps, opts.FS), nil
	case ".png", ".apng":
		return newAPNGWriter(path, fps), nil
	case ".mp4", ".m4v", ".mov", ".mkv", ".webm":
		return newFFmpegWriter(path, fps), nil
	default:
		return nil, fmt.Errorf("video: unsupported animation format %q (want .avi, .gif, .png, .mp4, .m4v, .mov, .mkv or .webm)", ext)
	}
}

// frameSize locks the frame dimensions on first use.
type frameSize struct {
	w, h int
}

func (s *frameSize) accept(img image.Image) error {
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return fmt.Errorf("video: empty frame %dx%d", b.Dx(), b.Dy())
	}
	if s.w == 0 && s.h == 0 {
		s.w, s.h = b.Dx(), b.Dy()
		return nil
	}
	if b.Dx() != s.w || b.Dy() != s.h {
		return fmt.Errorf("video: frame is %dx%d, want %dx%d like the first frame",
			b.Dx(), b.Dy(), s.w, s.h)
	}
	return nil
}
