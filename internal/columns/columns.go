// Package columns binds every property of a parsed PLY header onto freshly
// allocated host-order buffers, one per property.
package columns

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/samcharles93/plyio/pkg/ply"
)

// DefaultListCapacity is used when Options.ListCapacity is zero. It covers
// triangle and quad faces.
const DefaultListCapacity = 4

var (
	ErrNoColumn = errors.New("columns: no such column")
	// ErrTooLarge reports a header whose element counts cannot be backed by
	// the body bytes available or would exceed the allocation cap.
	ErrTooLarge = errors.New("columns: declared elements exceed the data available")
	// ErrRaggedList reports list rows of differing lengths, which a
	// constant-length re-encode cannot represent.
	ErrRaggedList = errors.New("columns: list rows differ in length")
	// ErrListTruncated reports list rows longer than the kept capacity.
	ErrListTruncated = errors.New("columns: list rows exceed the list capacity")
)

type Options struct {
	// ListCapacity is the number of slots kept per list row.
	ListCapacity int
	// BodyBytes is an upper bound on the encoded body size, usually the
	// upload or file size. Zero skips the check.
	BodyBytes int64
	// MaxBytes caps the total size of the column buffers. Zero means no cap.
	MaxBytes int64
}

func (o Options) capacity() int {
	if o.ListCapacity <= 0 {
		return DefaultListCapacity
	}
	return o.ListCapacity
}

// ParseFormat accepts the header keywords plus "binary", which selects
// little endian.
func ParseFormat(s string) (ply.Format, error) {
	if strings.EqualFold(s, "binary") {
		return ply.FormatBinaryLittleEndian, nil
	}
	if f, ok := ply.ParseFormat(strings.ToLower(s)); ok {
		return f, nil
	}
	return 0, fmt.Errorf("unknown format %q (want ascii, binary, binary_little_endian or binary_big_endian)", s)
}

// Column is the storage of one property. Row i, slot j lives at byte
// (i*Capacity+j)*Type.Size() in Data. For lists, Lengths holds the on-disk
// length of every row.
type Column struct {
	Element  string
	Property string
	Type     ply.Type
	List     bool
	Capacity int
	Rows     int
	Data     []byte
	Lengths  []int
}

func (c *Column) stride() int { return c.Capacity * c.Type.Size() }

// Len is the number of filled slots in row i.
func (c *Column) Len(i int) int {
	if !c.List {
		return 1
	}
	return min(c.Lengths[i], c.Capacity)
}

// ListLength returns the single on-disk length shared by every row of a list
// column. Empty elements report 0.
func (c *Column) ListLength() (int, error) {
	if !c.List {
		return 1, nil
	}
	n := 0
	for i, l := range c.Lengths {
		if i == 0 {
			n = l
			continue
		}
		if l != n {
			return 0, fmt.Errorf("%w: %s.%s row 0 has %d entries, row %d has %d", ErrRaggedList, c.Element, c.Property, n, i, l)
		}
	}
	if n > c.Capacity {
		return 0, fmt.Errorf("%w: %s.%s rows hold %d entries, capacity is %d", ErrListTruncated, c.Element, c.Property, n, c.Capacity)
	}
	return n, nil
}

// Float decodes slot j of row i.
func (c *Column) Float(i, j int) (float64, error) {
	if i < 0 || i >= c.Rows || j < 0 || j >= c.Capacity {
		return 0, fmt.Errorf("%w: %s.%s[%d][%d]", ply.ErrOutOfBounds, c.Element, c.Property, i, j)
	}
	off := i*c.stride() + j*c.Type.Size()
	v, ok := c.Type.Value(c.Data[off:])
	if !ok {
		return 0, fmt.Errorf("%w: %s", ply.ErrUnsupportedType, c.Type)
	}
	return v, nil
}

// Table holds the columns of a file in header order.
type Table struct {
	Header  ply.Header
	Columns []*Column
}

// Bind allocates and binds a column for every property r declares. The
// header must already be parsed; the body is not touched.
func Bind(r *ply.Reader, opts Options) (*Table, error) {
	if err := checkSize(r.Header(), opts); err != nil {
		return nil, err
	}
	t := &Table{Header: r.Header()}
	for _, e := range r.Elements() {
		for _, p := range e.Properties {
			size := p.DType.Size()
			if size == 0 {
				return nil, fmt.Errorf("%w: %s.%s is %s", ply.ErrUnsupportedType, e.Name, p.Name, p.DType)
			}
			c := &Column{
				Element:  e.Name,
				Property: p.Name,
				Type:     p.DType,
				List:     p.IsList(),
				Capacity: 1,
				Rows:     e.Count,
			}
			if c.List {
				c.Capacity = opts.capacity()
			}
			c.Data = make([]byte, c.Rows*c.stride())

			prop := r.Property(e.Name, p.Name)
			var err error
			if c.List {
				c.Lengths = make([]int, c.Rows)
				if err = prop.RecordLengths(c.Lengths); err != nil {
					return nil, err
				}
				err = prop.BindList(c.Data, c.Capacity, 0, c.stride(), size)
			} else {
				err = prop.Bind(c.Data, 0, size)
			}
			if err != nil {
				return nil, err
			}
			t.Columns = append(t.Columns, c)
		}
	}
	return t, nil
}

// checkSize rejects headers whose element counts need more encoded bytes
// than opts.BodyBytes, or more buffer space than opts.MaxBytes.
func checkSize(h ply.Header, opts Options) error {
	limit := int64(math.MaxInt)
	if opts.MaxBytes > 0 {
		limit = min(limit, opts.MaxBytes)
	}
	var encoded, alloc int64
	for _, e := range h.Elements {
		rowMin, rowAlloc := rowBytes(h.Format, e, opts.capacity())
		var ok bool
		if encoded, ok = addMul(encoded, int64(e.Count), rowMin); !ok {
			return fmt.Errorf("%w: element '%s' declares %d rows", ErrTooLarge, e.Name, e.Count)
		}
		// The last ASCII token may lack a separator.
		if opts.BodyBytes > 0 && encoded > opts.BodyBytes+1 {
			return fmt.Errorf("%w: element '%s' declares %d rows, needing at least %d body bytes, have %d",
				ErrTooLarge, e.Name, e.Count, encoded, opts.BodyBytes)
		}
		if alloc, ok = addMul(alloc, int64(e.Count), rowAlloc); !ok || alloc > limit {
			return fmt.Errorf("%w: element '%s' needs more than %d bytes of column storage", ErrTooLarge, e.Name, limit)
		}
	}
	return nil
}

// rowBytes returns the smallest encoding of one row of e and the buffer
// space Bind allocates for it. An ASCII value takes at least a digit and a
// separator; an empty list is just its count.
func rowBytes(f ply.Format, e ply.Element, capacity int) (minEncoded, alloc int64) {
	for _, p := range e.Properties {
		size := int64(p.DType.Size())
		switch {
		case !p.IsList():
			alloc += size
			if f == ply.FormatASCII {
				minEncoded += 2
			} else {
				minEncoded += size
			}
		default:
			alloc += int64(capacity) * size
			if f == ply.FormatASCII {
				minEncoded += 2
			} else {
				minEncoded += int64(p.SType.Size())
			}
		}
	}
	return minEncoded, alloc
}

// addMul returns acc+n*m for non-negative operands, reporting overflow.
func addMul(acc, n, m int64) (int64, bool) {
	if m != 0 && n > (math.MaxInt64-acc)/m {
		return 0, false
	}
	return acc + n*m, true
}

// Load binds every property of r and reads the body from body, which must
// continue the stream the header was read from.
func Load(r *ply.Reader, body io.Reader, opts Options) (*Table, error) {
	t, err := Bind(r, opts)
	if err != nil {
		return nil, err
	}
	if err := r.ReadBody(body); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadFile reads the whole file at path into a Table. The returned Reader
// carries the file's diagnostics. A zero opts.BodyBytes is taken from the
// file size.
func LoadFile(path string, opts Options) (*Table, *ply.Reader, error) {
	r := ply.NewReader()
	if err := r.ReadHeaderFile(path); err != nil {
		return nil, r, err
	}
	if opts.BodyBytes == 0 {
		if fi, err := os.Stat(path); err == nil {
			opts.BodyBytes = fi.Size()
		}
	}
	t, err := Bind(r, opts)
	if err != nil {
		return nil, r, err
	}
	if err := r.ReadBodyFile(path); err != nil {
		return nil, r, err
	}
	return t, r, nil
}

// Column returns the column for element.property.
func (t *Table) Column(element, property string) (*Column, error) {
	for _, c := range t.Columns {
		if c.Element == element && c.Property == property {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrNoColumn, element, property)
}

// Writer declares the table on a new ply.Writer in the given format.
// Comments and obj_info lines are carried over. Every list is written with
// the length its rows share on disk; a list whose rows differ, or exceed the
// capacity, fails with ErrRaggedList or ErrListTruncated rather than being
// padded or cut.
func (t *Table) Writer(format ply.Format, comments ...string) (*ply.Writer, error) {
	w := ply.NewWriter()
	w.SetFormat(format)
	if t.Header.Version != 0 {
		w.SetVersion(t.Header.Version)
	}
	for _, c := range t.Header.Comments {
		w.AddComment(c)
	}
	for _, c := range comments {
		w.AddComment(c)
	}
	for _, o := range t.Header.ObjInfo {
		w.AddObjInfo(o)
	}
	for _, e := range t.Header.Elements {
		w.AddElement(e.Name, e.Count)
		for _, p := range e.Properties {
			c, err := t.Column(e.Name, p.Name)
			if err != nil {
				return nil, err
			}
			size := c.Type.Size()
			if c.List {
				n, lerr := c.ListLength()
				if lerr != nil {
					return nil, lerr
				}
				err = w.AddListProperty(e.Name, p.Name, n, c.Data, c.Type, 0, c.stride(), size)
			} else {
				err = w.AddProperty(e.Name, p.Name, c.Data, c.Type, 0, size)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return w, nil
}

// ColumnStats summarises the filled slots of a column. Count is the number
// of values seen; list slots beyond a row's length are not counted.
type ColumnStats struct {
	Element  string  `json:"element" yaml:"element"`
	Property string  `json:"property" yaml:"property"`
	Type     string  `json:"type" yaml:"type"`
	Count    int     `json:"count" yaml:"count"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Mean     float64 `json:"mean" yaml:"mean"`
}

// Stats computes min, max and mean per column. Empty columns report zeros.
func (t *Table) Stats() []ColumnStats {
	out := make([]ColumnStats, 0, len(t.Columns))
	for _, c := range t.Columns {
		s := ColumnStats{Element: c.Element, Property: c.Property, Type: c.Type.String()}
		size := c.Type.Size()
		minV, maxV, sum := math.Inf(1), math.Inf(-1), 0.0
		for i := range c.Rows {
			for j := range c.Len(i) {
				v, _ := c.Type.Value(c.Data[i*c.stride()+j*size:])
				minV = min(minV, v)
				maxV = max(maxV, v)
				sum += v
				s.Count++
			}
		}
		if s.Count > 0 {
			s.Min, s.Max, s.Mean = minV, maxV, sum/float64(s.Count)
		}
		out = append(out, s)
	}
	return out
}
