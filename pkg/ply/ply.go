// Package ply reads and writes PLY point cloud and mesh files.
//
// A PLY file is a text header declaring elements (vertex, face, ...) and their
// properties, followed by a body of element rows in ASCII or fixed-width binary.
// This package never allocates destination storage: callers bind each property
// they care about onto their own memory with a byte offset and stride, and the
// body reader writes values straight into it. Unbound properties are parsed and
// discarded so the stream stays aligned.
//
// Reading is two-phase: ReadHeader parses metadata only, the caller binds
// properties, then ReadBody fills the bound buffers. Writing is the inverse:
// declare elements and properties with their source buffers, then Write emits
// header and body in one pass.
//
// Neither Reader nor Writer is safe for concurrent use.
package ply

import "fmt"

// Magic is the literal first line of every PLY file.
const Magic = "ply"

// Format is the body encoding declared on the header's format line.
type Format uint8

const (
	FormatASCII Format = iota + 1
	FormatBinaryLittleEndian
	FormatBinaryBigEndian
)

// ParseFormat maps a format keyword to its Format.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "ascii":
		return FormatASCII, true
	case "binary_little_endian":
		return FormatBinaryLittleEndian, true
	case "binary_big_endian":
		return FormatBinaryBigEndian, true
	default:
		return 0, false
	}
}

func (f Format) String() string {
	switch f {
	case FormatASCII:
		return "ascii"
	case FormatBinaryLittleEndian:
		return "binary_little_endian"
	case FormatBinaryBigEndian:
		return "binary_big_endian"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// Binary reports whether f is one of the two binary encodings.
func (f Format) Binary() bool {
	return f == FormatBinaryLittleEndian || f == FormatBinaryBigEndian
}
