package ply

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// hostOrder is the byte order of caller memory. Bound buffers always hold
// values in host order whatever the file's declared encoding.
var hostOrder binary.ByteOrder = binary.LittleEndian

func init() {
	if cpu.IsBigEndian {
		hostOrder = binary.BigEndian
	}
}

// ScalarOffset returns the byte position of the i-th instance.
func ScalarOffset(offset, stride, i int) int {
	return offset + i*stride
}

// ListOffset returns the byte position of entry j of the i-th instance's list.
func ListOffset(offset, outer, inner, i, j int) int {
	return offset + i*outer + j*inner
}

// window is a strided layout over caller bytes. All offsets and strides are
// in bytes.
type window struct {
	data   []byte
	offset int
	stride int
	inner  int
}

func (w window) slot(i, j, size int) ([]byte, error) {
	at := ListOffset(w.offset, w.stride, w.inner, i, j)
	if at < 0 || at+size > len(w.data) {
		return nil, fmt.Errorf("%w: bytes [%d,%d) of %d", ErrOutOfBounds, at, at+size, len(w.data))
	}
	return w.data[at : at+size : at+size], nil
}

// validate checks that count instances of capacity entries each fit in data.
func (w window) validate(count, capacity, size int) error {
	if w.offset < 0 || w.stride < 0 || w.inner < 0 {
		return fmt.Errorf("%w: negative offset or stride", ErrBinding)
	}
	if count <= 0 || capacity <= 0 || size == 0 {
		return nil
	}
	need, ok := addMul(w.offset, count-1, w.stride)
	if ok {
		need, ok = addMul(need, capacity-1, w.inner)
	}
	if ok {
		need, ok = addMul(need, 1, size)
	}
	if !ok {
		return fmt.Errorf("%w: layout for %d instances overflows", ErrOutOfBounds, count)
	}
	if need > len(w.data) {
		return fmt.Errorf("%w: layout needs %d bytes, buffer holds %d", ErrOutOfBounds, need, len(w.data))
	}
	return nil
}

// addMul returns acc+n*m for non-negative operands, reporting overflow.
func addMul(acc, n, m int) (int, bool) {
	if m != 0 && n > (math.MaxInt-acc)/m {
		return 0, false
	}
	return acc + n*m, true
}

// View is a writable strided window over caller-owned destination memory.
type View struct {
	window
}

// NewView describes a destination buffer laid out with the given byte offset,
// outer stride (between instances) and inner stride (between list entries).
func NewView(data []byte, offset, stride, inner int) View {
	return View{window{data: data, offset: offset, stride: stride, inner: inner}}
}

// Put stores one value of type t at entry j of instance i, in host order.
func (v View) Put(i, j int, t Type, bits uint64) error {
	c, ok := t.codec()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	b, err := v.slot(i, j, c.size)
	if err != nil {
		return err
	}
	storeBits(b, c.size, hostOrder, bits)
	return nil
}

// Source is a read-only strided window over caller-owned source memory.
type Source struct {
	window
}

func NewSource(data []byte, offset, stride, inner int) Source {
	return Source{window{data: data, offset: offset, stride: stride, inner: inner}}
}

// Get fetches one host-order value of type t at entry j of instance i.
func (s Source) Get(i, j int, t Type) (uint64, error) {
	c, ok := t.codec()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	b, err := s.slot(i, j, c.size)
	if err != nil {
		return 0, err
	}
	return loadBits(b, c.size, hostOrder), nil
}

// Bytes reinterprets a numeric slice as its backing bytes without copying.
// The result aliases s; values written through it land in host order.
func Bytes[T Number](s []T) []byte {
	return StructBytes(s)
}

// StructBytes is Bytes for arbitrary element types, typically struct arrays
// bound with field offsets from unsafe.Offsetof and stride unsafe.Sizeof.
func StructBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	n := int(unsafe.Sizeof(s[0])) * len(s)
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n)
}
