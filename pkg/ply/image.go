package ply

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// image is a whole file held in memory, mapped when the platform allows.
type image struct {
	data    []byte
	mmapped bool
}

// body returns the bytes following the end_header line.
func (m *image) body() ([]byte, bool) {
	rest := m.data
	for len(rest) > 0 {
		line := rest
		next := len(rest)
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line = rest[:i]
			next = i + 1
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		rest = rest[next:]
		if string(line) == "end_header" {
			return rest, true
		}
	}
	return nil, false
}

func imageSize(f *os.File) (int, error) {
	stat, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := stat.Size()
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return 0, fmt.Errorf("File size %d cannot be addressed", size)
	}
	return int(size), nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
