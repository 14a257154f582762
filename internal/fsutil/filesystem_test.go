package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	osfs := OSFileSystem{}

	if !osfs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}
	if osfs.Exists("no_such_file_xyz.go") {
		t.Error("expected missing file to not exist")
	}
}

func TestOSFileSystem_RoundTrip(t *testing.T) {
	osfs := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "frames", "out.bin")

	if err := osfs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	w, err := osfs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("jpeg bytes")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := osfs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("read back %q", data)
	}

	info, err := osfs.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != int64(len(data)) {
		t.Errorf("Stat size %d, want %d", info.Size(), len(data))
	}

	if err := osfs.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if osfs.Exists(path) {
		t.Error("file should be gone after Remove")
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.WriteFile("out/anim.gif", []byte("GIF89a"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := mfs.ReadFile("out/anim.gif")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "GIF89a" {
		t.Errorf("read back %q", data)
	}

	// Mutating the returned slice must not touch the stored copy.
	data[0] = 'X'
	again, _ := mfs.ReadFile("out/anim.gif")
	if string(again) != "GIF89a" {
		t.Error("ReadFile returned aliased storage")
	}
}

func TestMemoryFileSystem_CreatePublishesOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("video.avi")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("RIFF")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := w.Write([]byte("AVI ")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if data, _ := mfs.ReadFile("video.avi"); len(data) != 0 {
		t.Errorf("contents visible before Close: %q", data)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, err := mfs.ReadFile("video.avi")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "RIFFAVI " {
		t.Errorf("read back %q", data)
	}
}

func TestMemoryFileSystem_OpenReader(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.WriteFile("chain.npy", []byte{0x93, 'N', 'U', 'M', 'P', 'Y'}, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := mfs.Open("chain.npy")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(data) != 6 || data[0] != 0x93 {
		t.Errorf("read %v", data)
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 6 {
		t.Errorf("Stat size %d", info.Size())
	}
}

func TestMemoryFileSystem_MissingFiles(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if _, err := mfs.ReadFile("absent"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile error = %v, want fs.ErrNotExist", err)
	}
	if _, err := mfs.Open("absent"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open error = %v, want fs.ErrNotExist", err)
	}
	if _, err := mfs.Stat("absent"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat error = %v, want fs.ErrNotExist", err)
	}
	if err := mfs.Remove("absent"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Remove error = %v, want fs.ErrNotExist", err)
	}
}

func TestMemoryFileSystem_Dirs(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("plots/run1/frames", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"plots", "plots/run1", "plots/run1/frames"} {
		if !mfs.Exists(dir) {
			t.Errorf("directory %s should exist", dir)
		}
	}

	info, err := mfs.Stat("plots/run1")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.IsDir() {
		t.Error("Stat should report a directory")
	}

	if err := mfs.WriteFile("plots/run1/a.gif", nil, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := mfs.MkdirAll("plots/run1/a.gif", 0o755); err == nil {
		t.Error("MkdirAll over a file should fail")
	}
}

func TestMemoryFileSystem_Files(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("out", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, name := range []string{"out/b.gif", "out/a.gif", "out/c.mp4"} {
		if err := mfs.WriteFile(name, []byte{1}, 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	files := mfs.Files()
	if len(files) != 3 {
		t.Fatalf("Files = %v", files)
	}
	if files[0] != "out/a.gif" || files[2] != "out/c.mp4" {
		t.Errorf("Files not sorted: %v", files)
	}

	gifs := mfs.FilesWithSuffix(".gif")
	if len(gifs) != 2 {
		t.Errorf("FilesWithSuffix = %v", gifs)
	}
}
