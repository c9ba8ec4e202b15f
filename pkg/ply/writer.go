package ply

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

type outProperty struct {
	name   string
	dtype  Type
	list   bool
	length int
	src    Source
}

type outElement struct {
	name  string
	count int
	props []outProperty
}

// Writer is a writing session. Declare elements and their properties with
// the memory they are read from, then emit everything with Write.
type Writer struct {
	Diagnostics

	format   Format
	version  int
	comments []string
	objInfo  []string
	elements []outElement
}

// NewWriter returns a Writer producing binary little endian, version 1.
func NewWriter() *Writer {
	return &Writer{format: FormatBinaryLittleEndian, version: 1}
}

func (w *Writer) SetASCII() { w.format = FormatASCII }

// SetBinary selects the binary little endian encoding.
func (w *Writer) SetBinary() { w.format = FormatBinaryLittleEndian }

func (w *Writer) SetBinaryLittleEndian() { w.format = FormatBinaryLittleEndian }

func (w *Writer) SetBinaryBigEndian() { w.format = FormatBinaryBigEndian }

func (w *Writer) SetFormat(f Format) { w.format = f }

func (w *Writer) SetVersion(v int) { w.version = v }

func (w *Writer) AddComment(c string) { w.comments = append(w.comments, c) }

func (w *Writer) AddObjInfo(s string) { w.objInfo = append(w.objInfo, s) }

// AddElement declares an element with count instances.
func (w *Writer) AddElement(name string, count int) {
	w.elements = append(w.elements, outElement{name: name, count: count})
}

// AddProperty declares a scalar property whose i-th value is read from
// src[offset+i*stride:]. The element must already be declared.
func (w *Writer) AddProperty(element, name string, src []byte, t Type, offset, stride int) error {
	e := w.element(element)
	return w.add(e, outProperty{
		name:  name,
		dtype: t,
		src:   NewSource(src, offset, stride, 0),
	}, 1)
}

// AddListProperty declares a list property of constant length listLen.
// Entry j of instance i is read from src[offset+i*outer+j*inner:].
func (w *Writer) AddListProperty(element, name string, listLen int, src []byte, t Type, offset, outer, inner int) error {
	e := w.element(element)
	if listLen < 0 {
		return w.fail(fmt.Errorf("%w: '%s' length %d", ErrListLength, name, listLen))
	}
	return w.add(e, outProperty{
		name:   name,
		dtype:  t,
		list:   true,
		length: listLen,
		src:    NewSource(src, offset, outer, inner),
	}, listLen)
}

func (w *Writer) add(e *outElement, p outProperty, capacity int) error {
	size := p.dtype.Size()
	if size == 0 {
		return w.fail(fmt.Errorf("%w: '%s' has type %s", ErrUnsupportedType, p.name, p.dtype))
	}
	if err := p.src.validate(e.count, capacity, size); err != nil {
		return w.fail(fmt.Errorf("Property '%s': %w", p.name, err))
	}
	e.props = append(e.props, p)
	return nil
}

func (w *Writer) element(name string) *outElement {
	for i := range w.elements {
		if w.elements[i].name == name {
			return &w.elements[i]
		}
	}
	panic(fmt.Sprintf("ply: element '%s' not declared", name))
}

// Header returns the metadata Write will emit. List lengths are always
// declared as int.
func (w *Writer) Header() Header {
	h := Header{
		Format:   w.format,
		Version:  w.version,
		Comments: w.comments,
		ObjInfo:  w.objInfo,
	}
	for _, oe := range w.elements {
		e := Element{Name: oe.name, Count: oe.count}
		for _, p := range oe.props {
			if p.list {
				e.Add(NewListProperty(p.name, Int, p.dtype))
			} else {
				e.Add(NewProperty(p.name, p.dtype))
			}
		}
		h.Elements = append(h.Elements, e)
	}
	return h
}

// Write emits header and body to out.
func (w *Writer) Write(out io.Writer) error {
	bw := bufio.NewWriter(out)
	enc, err := newEncoder(w.format, bw)
	if err != nil {
		return w.fail(err)
	}
	h := w.Header()
	if _, err := h.WriteTo(bw); err != nil {
		return w.fail(err)
	}
	if err := writeBody(enc, w.elements); err != nil {
		return w.fail(err)
	}
	if err := bw.Flush(); err != nil {
		return w.fail(err)
	}
	return nil
}

// WriteFile creates or truncates path and writes the document to it.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return w.fail(fmt.Errorf("%w '%s'", ErrOpen, path))
	}
	if err := w.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return w.fail(err)
	}
	return nil
}
