package ply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Property is one column of an element. On the read side it also carries the
// caller's destination binding; an unbound property is parsed and discarded.
type Property struct {
	Name  string
	DType Type
	// SType is the list length type. It is only meaningful when IsList is true.
	SType Type

	list  bool
	count int

	bound    bool
	capacity int
	dst      View
	lengths  []int
}

// NewProperty describes a scalar property.
func NewProperty(name string, t Type) Property {
	return Property{Name: name, DType: t, SType: Unknown}
}

// NewListProperty describes a list property with length type stype.
func NewListProperty(name string, stype, dtype Type) Property {
	return Property{Name: name, DType: dtype, SType: stype, list: true}
}

func (p *Property) IsList() bool { return p.list }

// Ignored reports whether no destination is bound.
func (p *Property) Ignored() bool { return !p.bound }

// Capacity is the bound list capacity, 1 for bound scalars and 0 when ignored.
func (p *Property) Capacity() int {
	if !p.bound {
		return 0
	}
	return p.capacity
}

// Bind routes a scalar property into dst. Instance i is stored at
// offset+i*stride. The whole extent is checked against the element count.
func (p *Property) Bind(dst []byte, offset, stride int) error {
	if p.list {
		return fmt.Errorf("%w: '%s' is a list property", ErrBinding, p.Name)
	}
	return p.bind(NewView(dst, offset, stride, 0), 1)
}

// BindList routes a list property into dst. Entry j of instance i is stored
// at offset+i*outer+j*inner for j < capacity; longer lists are truncated and
// shorter ones leave the remaining slots untouched.
func (p *Property) BindList(dst []byte, capacity, offset, outer, inner int) error {
	if !p.list {
		return fmt.Errorf("%w: '%s' is not a list property", ErrBinding, p.Name)
	}
	if capacity < 0 {
		return fmt.Errorf("%w: negative capacity %d", ErrBinding, capacity)
	}
	return p.bind(NewView(dst, offset, outer, inner), capacity)
}

func (p *Property) bind(v View, capacity int) error {
	size := p.DType.Size()
	if size == 0 {
		return fmt.Errorf("%w: '%s' has type %s", ErrUnsupportedType, p.Name, p.DType)
	}
	if err := v.validate(p.count, capacity, size); err != nil {
		return fmt.Errorf("Bind '%s': %w", p.Name, err)
	}
	p.dst = v
	p.capacity = capacity
	p.bound = true
	return nil
}

// RecordLengths makes ReadBody store the on-disk length of instance i's
// list in dst[i], whatever capacity BindList kept. It works on unbound lists
// too.
func (p *Property) RecordLengths(dst []int) error {
	if !p.list {
		return fmt.Errorf("%w: '%s' is not a list property", ErrBinding, p.Name)
	}
	if len(dst) < p.count {
		return fmt.Errorf("%w: lengths for '%s' hold %d of %d instances", ErrOutOfBounds, p.Name, len(dst), p.count)
	}
	p.lengths = dst
	return nil
}

// Unbind returns the property to the ignore state and stops recording list
// lengths.
func (p *Property) Unbind() {
	p.bound = false
	p.capacity = 0
	p.dst = View{}
	p.lengths = nil
}

// Element is a named, counted collection of rows.
type Element struct {
	Name       string
	Count      int
	Properties []Property
}

// Property returns the first property called name, or nil.
func (e *Element) Property(name string) *Property {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return &e.Properties[i]
		}
	}
	return nil
}

// Add appends p, recording the owning element's count on it.
func (e *Element) Add(p Property) *Property {
	p.count = e.Count
	e.Properties = append(e.Properties, p)
	return &e.Properties[len(e.Properties)-1]
}

// Header is the metadata section of a PLY file.
type Header struct {
	Format   Format
	Version  int
	Comments []string
	ObjInfo  []string
	Elements []Element
}

// Element returns the first element called name, or nil.
func (h *Header) Element(name string) *Element {
	for i := range h.Elements {
		if h.Elements[i].Name == name {
			return &h.Elements[i]
		}
	}
	return nil
}

// WriteTo emits the header text, end_header line included. The version is
// always rendered with a ".0" suffix.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	sb.WriteString(Magic + "\n")
	fmt.Fprintf(&sb, "format %s %d.0\n", h.Format, h.Version)
	for _, c := range h.Comments {
		sb.WriteString("comment " + c + "\n")
	}
	for _, o := range h.ObjInfo {
		sb.WriteString("obj_info " + o + "\n")
	}
	for _, e := range h.Elements {
		fmt.Fprintf(&sb, "element %s %d\n", e.Name, e.Count)
		for _, p := range e.Properties {
			if p.list {
				fmt.Fprintf(&sb, "property list %s %s %s\n", p.SType, p.DType, p.Name)
			} else {
				fmt.Fprintf(&sb, "property %s %s\n", p.DType, p.Name)
			}
		}
	}
	sb.WriteString("end_header\n")
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// parseHeader reads header lines up to and including end_header. Unknown
// lines are reported through warn; the first grammar violation is returned.
func parseHeader(br *bufio.Reader, warn func(string)) (Header, error) {
	h := Header{Format: FormatBinaryLittleEndian}

	line, err := readLine(br)
	if err != nil && !errors.Is(err, io.EOF) {
		return Header{}, err
	}
	lineNum := 1
	if line != Magic {
		return Header{}, syntaxErrorf(lineNum, "expected 'ply', found '%s'", line)
	}

	for {
		line, err = readLine(br)
		if errors.Is(err, io.EOF) {
			return Header{}, ErrNoEndHeader
		}
		if err != nil {
			return Header{}, err
		}
		lineNum++

		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if line == "end_header" {
			return h, nil
		}

		switch tokens[0] {
		case "format":
			if len(tokens) != 3 {
				return Header{}, syntaxErrorf(lineNum, "expected 3 tokens (e.g. 'format ascii 1.0'), found %d", len(tokens))
			}
			f, ok := ParseFormat(tokens[1])
			if !ok {
				return Header{}, syntaxErrorf(lineNum, "'ascii', 'binary_big_endian', or 'binary_little_endian' required, found '%s'", tokens[1])
			}
			v, ok := leadingInt(tokens[2])
			if !ok {
				return Header{}, syntaxErrorf(lineNum, "expected numeric version, found '%s'", tokens[2])
			}
			h.Format = f
			h.Version = v
		case "comment":
			h.Comments = append(h.Comments, restOfLine(line))
		case "obj_info":
			h.ObjInfo = append(h.ObjInfo, restOfLine(line))
		case "element":
			if len(tokens) != 3 {
				return Header{}, syntaxErrorf(lineNum, "expected 3 tokens (e.g. 'element vertex 128'), found %d", len(tokens))
			}
			count, err := strconv.Atoi(tokens[2])
			if err != nil || count < 0 {
				return Header{}, syntaxErrorf(lineNum, "expected non-negative element count, found '%s'", tokens[2])
			}
			h.Elements = append(h.Elements, Element{Name: tokens[1], Count: count})
		case "property":
			if len(h.Elements) == 0 {
				return Header{}, syntaxErrorf(lineNum, "element required before property declaration")
			}
			if len(tokens) != 3 && len(tokens) != 5 {
				return Header{}, syntaxErrorf(lineNum, "expected 3 or 5 tokens (e.g. 'property float x' or 'property list int int vertex_indices'), found %d", len(tokens))
			}
			e := &h.Elements[len(h.Elements)-1]
			if tokens[1] == "list" {
				if len(tokens) != 5 {
					return Header{}, syntaxErrorf(lineNum, "expected 5 tokens (e.g. 'property list int int vertex_indices'), found %d", len(tokens))
				}
				e.Add(NewListProperty(tokens[4], ParseType(tokens[2]), ParseType(tokens[3])))
			} else {
				if len(tokens) != 3 {
					return Header{}, syntaxErrorf(lineNum, "expected 3 tokens (e.g. 'property float x'), found %d", len(tokens))
				}
				e.Add(NewProperty(tokens[2], ParseType(tokens[1])))
			}
		default:
			warn(fmt.Sprintf("Line %d: unknown header line '%s'", lineNum, line))
		}
	}
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned with a nil error; io.EOF means no more input.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", io.EOF
		}
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// restOfLine returns the text following the first token and the single
// separator after it, using the same whitespace rule as strings.Fields.
func restOfLine(line string) string {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)
	i := strings.IndexFunc(rest, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	_, size := utf8.DecodeRuneInString(rest[i:])
	return rest[i+size:]
}

// leadingInt parses the unsigned integer prefix of s, so "1.0" yields 1.
// Signs are rejected.
func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	return v, err == nil
}
