package prism

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/gif"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfarr/prism/internal/fsutil"
)

// memAnimation renders a small animation writing into an in-memory
// filesystem.
func memAnimation(t *testing.T) (*Animation, *fsutil.MemoryFileSystem) {
	t.Helper()
	c := convergingCube(t, 3, 6, 2)
	anim, err := Corner(c, fastOptions())
	require.NoError(t, err)

	mfs := fsutil.NewMemoryFileSystem()
	anim.fs = mfs
	return anim, mfs
}

// TestAnimationAccessors tests the frame bookkeeping surface.
func TestAnimationAccessors(t *testing.T) {
	t.Parallel()

	anim, _ := memAnimation(t)
	assert.Equal(t, 3, anim.FrameCount())
	assert.Equal(t, DefaultFPS, anim.FPS())
	assert.NotNil(t, anim.Frame(2))
	assert.Equal(t, 144, anim.Bounds().Dx())

	var empty Animation
	assert.Equal(t, 0, empty.FrameCount())
	assert.True(t, empty.Bounds().Empty())
}

// TestAnimationSave tests encoding through the extension dispatch.
func TestAnimationSave(t *testing.T) {
	t.Parallel()

	t.Run("gif round trip", func(t *testing.T) {
		t.Parallel()
		anim, mfs := memAnimation(t)
		require.NoError(t, anim.Save("out/anim.gif", 25))

		data, err := mfs.ReadFile("out/anim.gif")
		require.NoError(t, err)
		decoded, err := gif.DecodeAll(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Len(t, decoded.Image, 3)
		assert.Equal(t, 4, decoded.Delay[0], "25 fps is 4cs per frame")
	})

	t.Run("save rate can differ from build rate", func(t *testing.T) {
		t.Parallel()
		anim, mfs := memAnimation(t)
		require.NoError(t, anim.Save("slow.gif", 5))

		data, err := mfs.ReadFile("slow.gif")
		require.NoError(t, err)
		decoded, err := gif.DecodeAll(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 20, decoded.Delay[0])
	})

	t.Run("non-positive fps", func(t *testing.T) {
		t.Parallel()
		anim, mfs := memAnimation(t)
		assert.Error(t, anim.Save("anim.gif", 0))
		assert.Empty(t, mfs.Files())
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()
		anim, mfs := memAnimation(t)
		assert.ErrorContains(t, anim.Save("anim.tiff", 25), "unsupported animation format")
		assert.Empty(t, mfs.Files())
	})

	t.Run("empty animation", func(t *testing.T) {
		t.Parallel()
		var empty Animation
		assert.ErrorContains(t, empty.Save("anim.gif", 25), "no frames")
	})
}

// TestSavePartialCleanup tests that a failed encode does not leave a
// file pretending to be a finished animation.
func TestSavePartialCleanup(t *testing.T) {
	t.Parallel()

	anim, mfs := memAnimation(t)
	// A frame of a different size poisons the stream partway through.
	anim.frames = append(anim.frames, image.NewRGBA(image.Rect(0, 0, 3, 3)))

	err := anim.Save("broken.gif", 25)
	require.Error(t, err)
	assert.False(t, mfs.Exists("broken.gif"), "partial output should be removed")
}

// TestImageHTML tests the self-contained GIF element.
func TestImageHTML(t *testing.T) {
	t.Parallel()

	anim, _ := memAnimation(t)
	html, err := anim.ImageHTML()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, `<img id="prism-`), "got %q", html[:30])
	require.Contains(t, html, "data:image/gif;base64,")

	// The inlined payload must decode back to the animation.
	start := strings.Index(html, "base64,") + len("base64,")
	end := strings.Index(html[start:], `"`)
	require.Greater(t, end, 0)
	raw, err := base64.StdEncoding.DecodeString(html[start : start+end])
	require.NoError(t, err)

	decoded, err := gif.DecodeAll(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Len(t, decoded.Image, anim.FrameCount())

	var empty Animation
	_, err = empty.ImageHTML()
	assert.Error(t, err)
}

// TestVideoHTMLErrors tests that encode failures surface instead of
// producing a broken element.
func TestVideoHTMLErrors(t *testing.T) {
	t.Parallel()

	// Odd frame dimensions are rejected before ffmpeg would launch, so
	// this fails the same way with or without the binary installed.
	anim := &Animation{
		frames: []*image.RGBA{image.NewRGBA(image.Rect(0, 0, 33, 32))},
		fps:    10,
		fs:     fsutil.OSFileSystem{},
	}
	_, err := anim.VideoHTML()
	assert.ErrorContains(t, err, "even frame dimensions")
}
