// Package fsutil abstracts the filesystem touched by animation encoders
// and chain readers. Production code runs on OSFileSystem; tests render
// into a MemoryFileSystem so encoding paths can be exercised without
// touching disk.
package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileSystem is the slice of filesystem behavior the library needs:
// streaming writes for encoders, whole-file reads for chain loading and
// cleanup of partial outputs.
type FileSystem interface {
	// Open opens the named file for reading.
	Open(name string) (fs.File, error)

	// Create creates or truncates the named file for writing.
	Create(name string) (io.WriteCloser, error)

	// ReadFile returns the contents of the named file.
	ReadFile(name string) ([]byte, error)

	// WriteFile writes data to the named file, creating it if needed.
	WriteFile(name string, data []byte, perm os.FileMode) error

	// Stat describes the named file.
	Stat(name string) (fs.FileInfo, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string, perm os.FileMode) error

	// Remove deletes the named file.
	Remove(name string) error

	// Exists reports whether the named file or directory exists.
	Exists(name string) bool
}

// OSFileSystem passes every operation through to the os package.
type OSFileSystem struct{}

func (OSFileSystem) Open(name string) (fs.File, error)          { return os.Open(name) }
func (OSFileSystem) Create(name string) (io.WriteCloser, error) { return os.Create(name) }
func (OSFileSystem) ReadFile(name string) ([]byte, error)       { return os.ReadFile(name) }
func (OSFileSystem) Stat(name string) (fs.FileInfo, error)      { return os.Stat(name) }
func (OSFileSystem) Remove(name string) error                   { return os.Remove(name) }

func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFileSystem) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// MemoryFileSystem keeps files in a map for tests. Safe for concurrent
// use.
type MemoryFileSystem struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
}

type memEntry struct {
	data  []byte
	mode  os.FileMode
	isDir bool
}

// NewMemoryFileSystem returns an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{entries: make(map[string]*memEntry)}
}

func (m *MemoryFileSystem) Open(name string) (fs.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	e, ok := m.entries[name]
	if !ok || e.isDir {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &memReader{name: name, data: append([]byte(nil), e.data...)}, nil
}

func (m *MemoryFileSystem) Create(name string) (io.WriteCloser, error) {
	name = filepath.Clean(name)

	m.mu.Lock()
	m.entries[name] = &memEntry{mode: 0o644}
	m.mu.Unlock()

	return &memWriter{fs: m, name: name}, nil
}

func (m *MemoryFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	e, ok := m.entries[name]
	if !ok || e.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), e.data...), nil
}

func (m *MemoryFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[filepath.Clean(name)] = &memEntry{data: append([]byte(nil), data...), mode: perm}
	return nil
}

func (m *MemoryFileSystem) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	e, ok := m.entries[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return &memInfo{name: filepath.Base(name), size: int64(len(e.data)), mode: e.mode, isDir: e.isDir}, nil
}

func (m *MemoryFileSystem) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	for p := path; p != "." && p != "/"; p = filepath.Dir(p) {
		if e, ok := m.entries[p]; ok && !e.isDir {
			return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
		}
		m.entries[p] = &memEntry{mode: perm, isDir: true}
	}
	return nil
}

func (m *MemoryFileSystem) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = filepath.Clean(name)
	if _, ok := m.entries[name]; !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(m.entries, name)
	return nil
}

func (m *MemoryFileSystem) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[filepath.Clean(name)]
	return ok
}

// Files returns the sorted paths of all regular files, for test
// assertions about what an encoder produced.
func (m *MemoryFileSystem) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name, e := range m.entries {
		if !e.isDir {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// FilesWithSuffix returns the sorted paths of regular files whose name
// ends with suffix.
func (m *MemoryFileSystem) FilesWithSuffix(suffix string) []string {
	var names []string
	for _, name := range m.Files() {
		if strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}
	return names
}

type memReader struct {
	name   string
	data   []byte
	offset int
}

func (r *memReader) Read(p []byte) (int, error) {
	if r.offset >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.offset:])
	r.offset += n
	return n, nil
}

func (r *memReader) Close() error { return nil }

func (r *memReader) Stat() (fs.FileInfo, error) {
	return &memInfo{name: filepath.Base(r.name), size: int64(len(r.data))}, nil
}

// memWriter buffers writes and publishes the file on Close, so encoders
// that fail midway leave the previous contents visible.
type memWriter struct {
	fs   *MemoryFileSystem
	name string
	buf  []byte
}

func (w *memWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *memWriter) Close() error {
	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()

	w.fs.entries[w.name] = &memEntry{data: w.buf, mode: 0o644}
	return nil
}

type memInfo struct {
	name  string
	size  int64
	mode  os.FileMode
	isDir bool
}

func (i *memInfo) Name() string       { return i.name }
func (i *memInfo) Size() int64        { return i.size }
func (i *memInfo) Mode() os.FileMode  { return i.mode }
func (i *memInfo) ModTime() time.Time { return time.Time{} }
func (i *memInfo) IsDir() bool        { return i.isDir }
func (i *memInfo) Sys() any           { return nil }
