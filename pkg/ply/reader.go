package ply

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
)

// Reader is a reading session. Call ReadHeader, bind the properties of
// interest, then call ReadBody. A Reader may be reused for another file once
// the previous one is done; every ReadHeader starts from an empty state.
type Reader struct {
	Diagnostics

	header Header
	parsed bool

	// stream the header was read from and the buffer wrapped around it, so
	// ReadBody on the same stream resumes where the header ended.
	src io.Reader
	br  *bufio.Reader
}

func NewReader() *Reader {
	return &Reader{}
}

// ReadHeader parses the header from in. If in is a *bufio.Reader it is used
// directly; otherwise the Reader keeps its own buffer over in for ReadBody.
func (r *Reader) ReadHeader(in io.Reader) error {
	*r = Reader{}

	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	h, err := parseHeader(br, r.warn)
	if err != nil {
		return r.fail(err)
	}
	r.header = h
	r.parsed = true
	r.src = in
	r.br = br
	return nil
}

// ReadHeaderFile parses the header of the file at path. The file is closed
// before returning.
func (r *Reader) ReadHeaderFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		*r = Reader{}
		return r.fail(fmt.Errorf("%w '%s'", ErrOpen, path))
	}
	defer func() { _ = f.Close() }()

	if err := r.ReadHeader(f); err != nil {
		return err
	}
	r.src = nil
	r.br = nil
	return nil
}

// ReadBody fills the bound properties from in, which must be positioned at
// the first body byte. Passing the same stream given to ReadHeader continues
// from its buffered position.
func (r *Reader) ReadBody(in io.Reader) error {
	if !r.parsed {
		return r.fail(ErrHeaderNotRead)
	}
	var br *bufio.Reader
	switch {
	case sameStream(in, r.src):
		br = r.br
	default:
		var ok bool
		if br, ok = in.(*bufio.Reader); !ok {
			br = bufio.NewReader(in)
		}
	}
	return r.readBody(br)
}

// ReadBodyFile reopens path, skips past end_header and fills the bound
// properties. The file is mapped read-only when possible.
func (r *Reader) ReadBodyFile(path string) error {
	if !r.parsed {
		return r.fail(ErrHeaderNotRead)
	}
	img, err := openImage(path)
	if err != nil {
		return r.fail(fmt.Errorf("%w '%s'", ErrOpen, path))
	}
	defer func() { _ = img.Close() }()

	body, ok := img.body()
	if !ok {
		return r.fail(ErrNoEndHeader)
	}
	return r.readBody(bufio.NewReader(bytes.NewReader(body)))
}

func (r *Reader) readBody(br *bufio.Reader) error {
	dec, err := newDecoder(r.header.Format, br)
	if err != nil {
		return r.fail(err)
	}
	if err := readBody(dec, r.header.Elements); err != nil {
		return r.fail(err)
	}
	return nil
}

// sameStream reports whether a and b are the same reader value. Readers
// with non-comparable dynamic types never match.
func sameStream(a, b io.Reader) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	return ta == reflect.TypeOf(b) && ta.Comparable() && a == b
}

// Header returns the parsed header. Its slices are shared with the Reader.
func (r *Reader) Header() Header { return r.header }

func (r *Reader) Format() Format { return r.header.Format }

func (r *Reader) ASCII() bool { return r.header.Format == FormatASCII }

func (r *Reader) Binary() bool { return r.header.Format.Binary() }

func (r *Reader) BinaryLittleEndian() bool { return r.header.Format == FormatBinaryLittleEndian }

func (r *Reader) BinaryBigEndian() bool { return r.header.Format == FormatBinaryBigEndian }

func (r *Reader) Version() int { return r.header.Version }

func (r *Reader) Comments() []string { return r.header.Comments }

func (r *Reader) ObjInfo() []string { return r.header.ObjInfo }

func (r *Reader) Elements() []Element { return r.header.Elements }

func (r *Reader) HasElement(name string) bool {
	return r.header.Element(name) != nil
}

func (r *Reader) HasProperty(element, name string) bool {
	e := r.header.Element(element)
	return e != nil && e.Property(name) != nil
}

// ElementCount returns the instance count of element, or 0 if absent.
func (r *Reader) ElementCount(element string) int {
	if e := r.header.Element(element); e != nil {
		return e.Count
	}
	return 0
}

// Element returns the named element. It panics if there is none; check with
// HasElement first when the file is not trusted.
func (r *Reader) Element(name string) *Element {
	e := r.header.Element(name)
	if e == nil {
		panic(fmt.Sprintf("ply: element '%s' not found", name))
	}
	return e
}

// Property returns the named property for binding. It panics if absent.
func (r *Reader) Property(element, name string) *Property {
	p := r.Element(element).Property(name)
	if p == nil {
		panic(fmt.Sprintf("ply: property '%s' not found in element '%s'", name, element))
	}
	return p
}

// Properties returns the properties of element in file order. It panics if
// the element is absent.
func (r *Reader) Properties(element string) []Property {
	return r.Element(element).Properties
}
