package ply

import (
	"encoding/binary"
	"math"
	"strconv"
	"unsafe"
)

// Type is a PLY primitive scalar type.
type Type uint8

const (
	Char Type = iota
	UChar
	Short
	UShort
	Int
	UInt
	Float
	Double
	Unknown
)

// ParseType maps a header type keyword to its Type. Unrecognised keywords
// yield Unknown; deciding whether that is fatal is left to the caller.
func ParseType(s string) Type {
	switch s {
	case "char", "int8":
		return Char
	case "uchar", "uint8":
		return UChar
	case "short", "int16":
		return Short
	case "ushort", "uint16":
		return UShort
	case "int", "int32":
		return Int
	case "uint", "uint32":
		return UInt
	case "float", "float32":
		return Float
	case "double", "float64":
		return Double
	default:
		return Unknown
	}
}

func (t Type) String() string {
	switch t {
	case Char:
		return "char"
	case UChar:
		return "uchar"
	case Short:
		return "short"
	case UShort:
		return "ushort"
	case Int:
		return "int"
	case UInt:
		return "uint"
	case Float:
		return "float"
	case Double:
		return "double"
	default:
		return "unknown"
	}
}

// Size returns the encoded width of t in bytes, or 0 for Unknown.
func (t Type) Size() int {
	c, ok := t.codec()
	if !ok {
		return 0
	}
	return c.size
}

// Value decodes one host-order value of type t from the front of b.
func (t Type) Value(b []byte) (float64, bool) {
	c, ok := t.codec()
	if !ok || len(b) < c.size {
		return 0, false
	}
	return c.float(loadBits(b, c.size, hostOrder)), true
}

// Number is the set of Go types with a direct PLY counterpart.
type Number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32 | ~float64
}

// TypeOf returns the PLY type matching T.
func TypeOf[T Number]() Type {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Char
	case uint8:
		return UChar
	case int16:
		return Short
	case uint16:
		return UShort
	case int32:
		return Int
	case uint32:
		return UInt
	case float32:
		return Float
	case float64:
		return Double
	default:
		return Unknown
	}
}

// codec is the single dispatch point over the primitive catalog. Values travel
// between stream and memory as raw bits zero-extended into a uint64.
type codec struct {
	size   int
	parse  func(tok string) (uint64, error)
	format func(bits uint64) string
	length func(bits uint64) int
	float  func(bits uint64) float64
}

var codecs = [...]codec{
	// 8-bit values go through a 16-bit parse so "200" and "-3" read as numbers.
	Char: integerCodec(func(s string) (int8, error) {
		v, err := strconv.ParseInt(s, 10, 16)
		return int8(v), err
	}),
	UChar: integerCodec(func(s string) (uint8, error) {
		v, err := strconv.ParseUint(s, 10, 16)
		return uint8(v), err
	}),
	Short: integerCodec(func(s string) (int16, error) {
		v, err := strconv.ParseInt(s, 10, 16)
		return int16(v), err
	}),
	UShort: integerCodec(func(s string) (uint16, error) {
		v, err := strconv.ParseUint(s, 10, 16)
		return uint16(v), err
	}),
	Int: integerCodec(func(s string) (int32, error) {
		v, err := strconv.ParseInt(s, 10, 32)
		return int32(v), err
	}),
	UInt: integerCodec(func(s string) (uint32, error) {
		v, err := strconv.ParseUint(s, 10, 32)
		return uint32(v), err
	}),
	Float: {
		size: 4,
		parse: func(tok string) (uint64, error) {
			v, err := strconv.ParseFloat(tok, 32)
			return uint64(math.Float32bits(float32(v))), err
		},
		format: func(bits uint64) string {
			return strconv.FormatFloat(float64(math.Float32frombits(uint32(bits))), 'g', -1, 32)
		},
		length: func(bits uint64) int { return int(math.Float32frombits(uint32(bits))) },
		float:  func(bits uint64) float64 { return float64(math.Float32frombits(uint32(bits))) },
	},
	Double: {
		size: 8,
		parse: func(tok string) (uint64, error) {
			v, err := strconv.ParseFloat(tok, 64)
			return math.Float64bits(v), err
		},
		format: func(bits uint64) string {
			return strconv.FormatFloat(math.Float64frombits(bits), 'g', -1, 64)
		},
		length: func(bits uint64) int { return int(math.Float64frombits(bits)) },
		float:  math.Float64frombits,
	},
}

type integer interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32
}

func integerCodec[T integer](parse func(string) (T, error)) codec {
	var zero T
	return codec{
		size: int(unsafe.Sizeof(zero)),
		parse: func(tok string) (uint64, error) {
			v, err := parse(tok)
			return uint64(v), err
		},
		format: func(bits uint64) string { return strconv.FormatInt(int64(T(bits)), 10) },
		length: func(bits uint64) int { return int(T(bits)) },
		float:  func(bits uint64) float64 { return float64(T(bits)) },
	}
}

func (t Type) codec() (*codec, bool) {
	if int(t) >= len(codecs) {
		return nil, false
	}
	return &codecs[t], true
}

func loadBits(b []byte, size int, order binary.ByteOrder) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	default:
		return 0
	}
}

func storeBits(b []byte, size int, order binary.ByteOrder, bits uint64) {
	switch size {
	case 1:
		b[0] = byte(bits)
	case 2:
		order.PutUint16(b, uint16(bits))
	case 4:
		order.PutUint32(b, uint32(bits))
	case 8:
		order.PutUint64(b, bits)
	}
}
