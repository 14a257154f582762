package prism

import (
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bfarr/prism/internal/fsutil"
	"github.com/bfarr/prism/internal/monitoring"
	"github.com/bfarr/prism/internal/video"
)

// Animation is a rendered frame sequence ready to encode. Frames are
// shared, not copied; treat them as read-only.
type Animation struct {
	frames      []*image.RGBA
	fps         int
	jpegQuality int
	fs          fsutil.FileSystem
}

// FrameCount returns the number of frames, crossfade in-betweens
// included.
func (a *Animation) FrameCount() int { return len(a.frames) }

// Frame returns frame i. The returned image is shared with the
// animation and must not be modified.
func (a *Animation) Frame(i int) *image.RGBA { return a.frames[i] }

// FPS returns the playback rate the animation was built for.
func (a *Animation) FPS() int { return a.fps }

// Bounds returns the pixel rectangle common to every frame.
func (a *Animation) Bounds() image.Rectangle {
	if len(a.frames) == 0 {
		return image.Rectangle{}
	}
	return a.frames[0].Bounds()
}

// Save encodes the animation to path at the given playback rate. The
// container comes from the extension: .avi, .gif, .png/.apng, or .mp4
// and friends via an ffmpeg binary on PATH. A failed encode removes the
// partial output file.
func (a *Animation) Save(path string, fps int) error {
	if len(a.frames) == 0 {
		return fmt.Errorf("prism: animation has no frames")
	}
	if fps < 1 {
		return fmt.Errorf("prism: fps %d must be positive", fps)
	}

	w, err := video.NewWriter(path, fps, video.Options{JPEGQuality: a.jpegQuality, FS: a.fs})
	if err != nil {
		return fmt.Errorf("prism: save %s: %w", path, err)
	}
	for i, f := range a.frames {
		if err := w.AddFrame(f); err != nil {
			w.Close()
			a.removePartial(path)
			return fmt.Errorf("prism: save %s: frame %d: %w", path, i, err)
		}
	}
	if err := w.Close(); err != nil {
		a.removePartial(path)
		return fmt.Errorf("prism: save %s: %w", path, err)
	}
	monitoring.Logf("prism: wrote %d frames to %s at %d fps", len(a.frames), path, fps)
	return nil
}

// removePartial drops a half-written output so a failed save never
// leaves a file that looks finished.
func (a *Animation) removePartial(path string) {
	if !a.fs.Exists(path) {
		return
	}
	if err := a.fs.Remove(path); err != nil {
		monitoring.Logf("prism: could not remove partial output %s: %v", path, err)
	}
}

// videoTag embeds a base64 mp4 so the animation plays inline in a
// notebook or report without a file next to it.
const videoTag = `<video controls>
 <source src="data:video/x-m4v;base64,%s" type="video/mp4">
 Your browser does not support the video tag.
</video>`

const imageTag = `<img id="prism-%s" alt="corner-plot animation" src="data:image/gif;base64,%s">`

// VideoHTML encodes the animation as H.264 and returns a self-contained
// HTML video element with the bytes inlined. Needs ffmpeg on PATH.
func (a *Animation) VideoHTML() (string, error) {
	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("prism-%s.mp4", uuid.NewString()))
	if err := a.Save(tmp, a.fps); err != nil {
		return "", err
	}
	defer a.removePartial(tmp)

	data, err := a.fs.ReadFile(tmp)
	if err != nil {
		return "", fmt.Errorf("prism: read encoded video: %w", err)
	}
	return fmt.Sprintf(videoTag, base64.StdEncoding.EncodeToString(data)), nil
}

// ImageHTML encodes the animation as a looping GIF and returns a
// self-contained HTML img element. Unlike VideoHTML it needs no
// external binaries.
func (a *Animation) ImageHTML() (string, error) {
	if len(a.frames) == 0 {
		return "", fmt.Errorf("prism: animation has no frames")
	}

	mfs := fsutil.NewMemoryFileSystem()
	w, err := video.NewWriter("inline.gif", a.fps, video.Options{FS: mfs})
	if err != nil {
		return "", fmt.Errorf("prism: inline gif: %w", err)
	}
	for i, f := range a.frames {
		if err := w.AddFrame(f); err != nil {
			return "", fmt.Errorf("prism: inline gif: frame %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("prism: inline gif: %w", err)
	}

	data, err := mfs.ReadFile("inline.gif")
	if err != nil {
		return "", fmt.Errorf("prism: inline gif: %w", err)
	}
	return fmt.Sprintf(imageTag, uuid.NewString(), base64.StdEncoding.EncodeToString(data)), nil
}
