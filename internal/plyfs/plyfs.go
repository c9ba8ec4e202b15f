// Package plyfs opens and creates PLY files by path. Files ending in .br are
// brotli-compressed transparently.
package plyfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andybalholm/brotli"
)

const (
	Ext           = ".ply"
	CompressedExt = ".ply.br"
)

// IsPLY reports whether name looks like a plain or compressed PLY file.
func IsPLY(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, Ext) || strings.HasSuffix(lower, CompressedExt)
}

// Compressed reports whether path is brotli-compressed by naming convention.
func Compressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".br")
}

type readCloser struct {
	io.Reader
	f *os.File
}

func (r *readCloser) Close() error { return r.f.Close() }

// Open returns a reader over the decoded PLY bytes at path.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !Compressed(path) {
		return f, nil
	}
	return &readCloser{Reader: brotli.NewReader(f), f: f}, nil
}

// DecodedSize returns the number of decoded bytes at path. Compressed files
// are streamed through the decoder once.
func DecodedSize(path string) (int64, error) {
	if !Compressed(path) {
		st, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		return st.Size(), nil
	}
	rc, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()
	return io.Copy(io.Discard, rc)
}

type writeCloser struct {
	bw *brotli.Writer
	f  *os.File
}

func (w *writeCloser) Write(p []byte) (int, error) { return w.bw.Write(p) }

func (w *writeCloser) Close() error {
	return errors.Join(w.bw.Close(), w.f.Close())
}

// Create creates or truncates path, making parent directories as needed.
// Compressed output must be closed to flush the brotli stream.
func Create(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !Compressed(path) {
		return f, nil
	}
	return &writeCloser{bw: brotli.NewWriterLevel(f, brotli.DefaultCompression), f: f}, nil
}

// Discover lists the PLY files directly inside dir, sorted by path.
func Discover(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("plyfs: directory is empty")
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("plyfs: not a directory: %s", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() || !IsPLY(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
