//go:build unix

package ply

import (
	"os"

	"golang.org/x/sys/unix"
)

// openImage maps path read-only, falling back to ReadAt loading when mmap
// is refused (pipes, some network filesystems).
func openImage(path string) (*image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	size, err := imageSize(f)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return &image{data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return &image{data: data, mmapped: true}, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return &image{data: data}, nil
}

func (m *image) Close() error {
	if !m.mmapped || m.data == nil {
		m.data = nil
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	m.mmapped = false
	return err
}
