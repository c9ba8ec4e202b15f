package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/plyio/internal/columns"
	"github.com/samcharles93/plyio/internal/logger"
	"github.com/samcharles93/plyio/internal/version"
	"github.com/samcharles93/plyio/pkg/ply"
)

const triangle = `ply
format ascii 1.0
comment made by hand
element vertex 3
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
0 1 0
3 0 1 2
`

func testContext() context.Context {
	return logger.WithContext(context.Background(), logger.Discard())
}

func TestRunInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triangle.ply")
	writeFile(t, path, triangle)

	var out bytes.Buffer
	err := runInspect(testContext(), &out, inspectOptions{Path: path, Output: "text", Stats: true, ListCapacity: 3})
	if err != nil {
		t.Fatalf("runInspect returned error: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Format:  ascii 1.0", "Element vertex (3)", "Element face (1)", "vertex.x", "face.vertex_indices"} {
		if !strings.Contains(got, want) {
			t.Fatalf("inspect output missing %q:\n%s", want, got)
		}
	}
}

func TestRunInspectRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.ply")
	writeFile(t, path, "not a ply file\n")

	var out bytes.Buffer
	if err := runInspect(testContext(), &out, inspectOptions{Path: path, Output: "text"}); err == nil {
		t.Fatalf("expected error for invalid header")
	}
}

func TestRunConvertRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "triangle.ply")
	writeFile(t, in, triangle)

	for _, format := range []string{"binary", "binary_big_endian", "ascii"} {
		t.Run(format, func(t *testing.T) {
			out := filepath.Join(dir, format, "triangle.ply.br")
			err := runConvert(testContext(), convertOptions{
				In:           in,
				Out:          out,
				Format:   format,
				Comments: []string{"converted"},
			})
			if err != nil {
				t.Fatalf("runConvert returned error: %v", err)
			}

			var listing bytes.Buffer
			if err := runList(testContext(), &listing, filepath.Dir(out)); err != nil {
				t.Fatalf("runList returned error: %v", err)
			}
			if !strings.Contains(listing.String(), "vertex=3 face=1") {
				t.Fatalf("listing missing element counts:\n%s", listing.String())
			}

			var report bytes.Buffer
			if err := runInspect(testContext(), &report, inspectOptions{Path: out, Output: "text", Stats: true, ListCapacity: 3}); err != nil {
				t.Fatalf("inspect converted file: %v", err)
			}
			for _, want := range []string{"Comment: made by hand", "Comment: converted", "list<int> of int"} {
				if !strings.Contains(report.String(), want) {
					t.Fatalf("converted report missing %q:\n%s", want, report.String())
				}
			}
		})
	}
}

func TestRunConvertKeepsTriangleLength(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "triangle.ply")
	writeFile(t, in, triangle)
	out := filepath.Join(dir, "ascii.ply")

	if err := runConvert(testContext(), convertOptions{In: in, Out: out, Format: "ascii"}); err != nil {
		t.Fatalf("runConvert returned error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read converted file: %v", err)
	}
	if !strings.Contains(string(data), "\n3 0 1 2 \n") {
		t.Fatalf("face row not preserved:\n%s", data)
	}
	if strings.Contains(string(data), "4 0 1 2") {
		t.Fatalf("face row padded to list capacity:\n%s", data)
	}
}

func TestRunConvertListCapacityTooSmall(t *testing.T) {
	in := filepath.Join(t.TempDir(), "triangle.ply")
	writeFile(t, in, triangle)

	err := runConvert(testContext(), convertOptions{In: in, Out: in + ".out", Format: "ascii", ListCapacity: 2})
	if !errors.Is(err, columns.ErrListTruncated) {
		t.Fatalf("expected ErrListTruncated, got %v", err)
	}
	if !strings.Contains(err.Error(), "--list-capacity") {
		t.Fatalf("error should mention --list-capacity: %v", err)
	}
}

func TestOversizedElementCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.ply")
	writeFile(t, path, "ply\nformat ascii 1.0\nelement vertex 2000000000\nproperty float x\nend_header\n0\n")

	err := runConvert(testContext(), convertOptions{In: path, Out: path + ".out", Format: "binary"})
	if !errors.Is(err, columns.ErrTooLarge) {
		t.Fatalf("convert: expected ErrTooLarge, got %v", err)
	}
	if _, statErr := os.Stat(path + ".out"); statErr == nil {
		t.Fatalf("output must not be created for an oversized header")
	}

	var out bytes.Buffer
	err = runInspect(testContext(), &out, inspectOptions{Path: path, Output: "text", Stats: true})
	if !errors.Is(err, columns.ErrTooLarge) {
		t.Fatalf("inspect: expected ErrTooLarge, got %v", err)
	}

	out.Reset()
	if err := runInspect(testContext(), &out, inspectOptions{Path: path, Output: "text"}); err != nil {
		t.Fatalf("header-only inspect returned error: %v", err)
	}
}

func TestRunConvertUnknownFormat(t *testing.T) {
	in := filepath.Join(t.TempDir(), "triangle.ply")
	writeFile(t, in, triangle)

	err := runConvert(testContext(), convertOptions{In: in, Out: in + ".out", Format: "binary_middle_endian", ListCapacity: 3})
	if err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, statErr := os.Stat(in + ".out"); statErr == nil {
		t.Fatalf("output must not be created on a format error")
	}
}

func TestRunListMarksInvalidHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.ply"), triangle)
	writeFile(t, filepath.Join(dir, "a.ply"), "garbage\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	var out bytes.Buffer
	if err := runList(testContext(), &out, dir); err != nil {
		t.Fatalf("runList returned error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "(invalid header)") {
		t.Fatalf("expected invalid header marker:\n%s", got)
	}
	if strings.Index(got, "a.ply") > strings.Index(got, "b.ply") {
		t.Fatalf("expected sorted listing:\n%s", got)
	}
	if strings.Contains(got, "notes.txt") {
		t.Fatalf("non-ply file listed:\n%s", got)
	}
	if !strings.Contains(got, "2 file(s) found") {
		t.Fatalf("unexpected file count:\n%s", got)
	}
}

func TestLogDiagnosticsAcceptsWarnings(t *testing.T) {
	r := ply.NewReader()
	err := r.ReadHeader(strings.NewReader("ply\nformat ascii 1.0\nmystery line\nend_header\n"))
	if err != nil {
		t.Fatalf("ReadHeader returned error: %v", err)
	}
	if !r.HasWarning() {
		t.Fatalf("expected a warning for the unknown line")
	}
	logDiagnostics(logger.Discard(), &r.Diagnostics)
}

func TestPrintVersion(t *testing.T) {
	info := version.Info{Version: "v1.2.3", Commit: "abc"}

	var text bytes.Buffer
	if err := printVersion(&text, info, "text"); err != nil {
		t.Fatalf("printVersion returned error: %v", err)
	}
	if !strings.Contains(text.String(), "version:    v1.2.3") || !strings.Contains(text.String(), "commit:     abc") {
		t.Fatalf("unexpected text output:\n%s", text.String())
	}

	var js bytes.Buffer
	if err := printVersion(&js, info, "json"); err != nil {
		t.Fatalf("printVersion returned error: %v", err)
	}
	if !strings.Contains(js.String(), `"version": "v1.2.3"`) {
		t.Fatalf("unexpected json output:\n%s", js.String())
	}

	if err := printVersion(&bytes.Buffer{}, info, "xml"); err == nil {
		t.Fatalf("expected error for unknown output")
	}
}
