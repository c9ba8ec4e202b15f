//go:build !unix

package ply

import "os"

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
	data, err := readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return &image{data: data}, nil
}

func (m *image) Close() error {
	m.data = nil
	return nil
}
