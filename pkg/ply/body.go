package ply

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// decoder yields the raw bits of the next body value of type t.
type decoder interface {
	next(t Type) (uint64, error)
}

func newDecoder(f Format, br *bufio.Reader) (decoder, error) {
	switch f {
	case FormatASCII:
		return &asciiDecoder{br: br}, nil
	case FormatBinaryLittleEndian:
		return &binaryDecoder{br: br, order: binary.LittleEndian}, nil
	case FormatBinaryBigEndian:
		return &binaryDecoder{br: br, order: binary.BigEndian}, nil
	default:
		return nil, ErrFormat
	}
}

type asciiDecoder struct {
	br  *bufio.Reader
	tok []byte
}

func (d *asciiDecoder) next(t Type) (uint64, error) {
	c, ok := t.codec()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	tok, err := d.token()
	if err != nil {
		return 0, err
	}
	bits, err := c.parse(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s' as %s", ErrInvalidToken, tok, t)
	}
	return bits, nil
}

// token returns the next whitespace-delimited token, spanning line breaks.
func (d *asciiDecoder) token() (string, error) {
	d.tok = d.tok[:0]
	for {
		b, err := d.br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(d.tok) > 0 {
					return string(d.tok), nil
				}
				return "", ErrTruncated
			}
			return "", err
		}
		if isSpace(b) {
			if len(d.tok) > 0 {
				return string(d.tok), nil
			}
			continue
		}
		d.tok = append(d.tok, b)
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t' || b == '\v' || b == '\f'
}

type binaryDecoder struct {
	br    *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (d *binaryDecoder) next(t Type) (uint64, error) {
	c, ok := t.codec()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	b := d.buf[:c.size]
	if _, err := io.ReadFull(d.br, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: want %d bytes for %s", ErrTruncated, c.size, t)
		}
		return 0, err
	}
	return loadBits(b, c.size, d.order), nil
}

// readBody walks every element row in declared order, storing bound values.
func readBody(dec decoder, elements []Element) error {
	for ei := range elements {
		e := &elements[ei]
		for i := 0; i < e.Count; i++ {
			for pi := range e.Properties {
				p := &e.Properties[pi]
				if err := p.read(dec, i); err != nil {
					return &BodyError{Element: e.Name, Index: i, Property: p.Name, Err: err}
				}
			}
		}
	}
	return nil
}

func (p *Property) read(dec decoder, i int) error {
	if !p.list {
		bits, err := dec.next(p.DType)
		if err != nil {
			return err
		}
		if p.bound {
			return p.dst.Put(i, 0, p.DType, bits)
		}
		return nil
	}

	lbits, err := dec.next(p.SType)
	if err != nil {
		return err
	}
	sc, _ := p.SType.codec()
	n := sc.length(lbits)
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrListLength, n)
	}
	if p.lengths != nil {
		p.lengths[i] = n
	}
	for j := range n {
		bits, err := dec.next(p.DType)
		if err != nil {
			return err
		}
		if p.bound && j < p.capacity {
			if err := p.dst.Put(i, j, p.DType, bits); err != nil {
				return err
			}
		}
	}
	return nil
}

// encoder serialises raw bits of type t.
type encoder interface {
	put(t Type, bits uint64) error
	endRow() error
}

func newEncoder(f Format, bw *bufio.Writer) (encoder, error) {
	switch f {
	case FormatASCII:
		return &asciiEncoder{bw: bw}, nil
	case FormatBinaryLittleEndian:
		return &binaryEncoder{bw: bw, order: binary.LittleEndian}, nil
	case FormatBinaryBigEndian:
		return &binaryEncoder{bw: bw, order: binary.BigEndian}, nil
	default:
		return nil, ErrFormat
	}
}

type asciiEncoder struct {
	bw *bufio.Writer
}

func (e *asciiEncoder) put(t Type, bits uint64) error {
	c, ok := t.codec()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	if _, err := e.bw.WriteString(c.format(bits)); err != nil {
		return err
	}
	return e.bw.WriteByte(' ')
}

func (e *asciiEncoder) endRow() error {
	return e.bw.WriteByte('\n')
}

type binaryEncoder struct {
	bw    *bufio.Writer
	order binary.ByteOrder
	buf   [8]byte
}

func (e *binaryEncoder) put(t Type, bits uint64) error {
	c, ok := t.codec()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	b := e.buf[:c.size]
	storeBits(b, c.size, e.order, bits)
	_, err := e.bw.Write(b)
	return err
}

func (e *binaryEncoder) endRow() error { return nil }

// writeBody mirrors readBody over writer-side sources. Lists are prefixed
// with their length as an int.
func writeBody(enc encoder, elements []outElement) error {
	for _, e := range elements {
		for i := 0; i < e.count; i++ {
			for _, p := range e.props {
				if err := p.write(enc, i); err != nil {
					return &BodyError{Element: e.name, Index: i, Property: p.name, Err: err}
				}
			}
			if err := enc.endRow(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *outProperty) write(enc encoder, i int) error {
	if !p.list {
		bits, err := p.src.Get(i, 0, p.dtype)
		if err != nil {
			return err
		}
		return enc.put(p.dtype, bits)
	}
	if err := enc.put(Int, uint64(uint32(int32(p.length)))); err != nil {
		return err
	}
	for j := range p.length {
		bits, err := p.src.Get(i, j, p.dtype)
		if err != nil {
			return err
		}
		if err := enc.put(p.dtype, bits); err != nil {
			return err
		}
	}
	return nil
}
