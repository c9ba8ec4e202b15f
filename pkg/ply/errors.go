package ply

import (
	"errors"
	"fmt"
)

// Error texts double as Diagnostics entries and follow the sentence-case
// register of the header messages ("Line N: ...").
var (
	ErrOpen            = errors.New("Failed to open file")
	ErrSyntax          = errors.New("Header syntax error")
	ErrNoEndHeader     = errors.New("Line 'end_header' not found")
	ErrHeaderNotRead   = errors.New("Header not read")
	ErrTruncated       = errors.New("Truncated stream")
	ErrInvalidToken    = errors.New("Invalid ascii token")
	ErrUnsupportedType = errors.New("Unsupported property type")
	ErrOutOfBounds     = errors.New("Access outside bound buffer")
	ErrBinding         = errors.New("Invalid property binding")
	ErrListLength      = errors.New("Invalid list length")
	ErrFormat          = errors.New("'ascii', 'binary_big_endian', or 'binary_little_endian' required")
)

// SyntaxError is a fatal header grammar error at a given line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

func syntaxErrorf(line int, format string, args ...any) error {
	return &SyntaxError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// BodyError locates a body failure at one property of one element instance.
type BodyError struct {
	Element  string
	Index    int
	Property string
	Err      error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("Element '%s' [%d] property '%s': %v", e.Element, e.Index, e.Property, e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}
