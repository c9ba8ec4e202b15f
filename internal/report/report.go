// Package report renders PLY header summaries as text, JSON or YAML.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/plyio/internal/columns"
	"github.com/samcharles93/plyio/pkg/ply"
)

type Property struct {
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	List      bool   `json:"list,omitempty" yaml:"list,omitempty"`
	CountType string `json:"count_type,omitempty" yaml:"count_type,omitempty"`
}

type Element struct {
	Name       string     `json:"name" yaml:"name"`
	Count      int        `json:"count" yaml:"count"`
	Properties []Property `json:"properties" yaml:"properties"`
}

// Header is the serialisable summary of one PLY file.
type Header struct {
	File     string                `json:"file,omitempty" yaml:"file,omitempty"`
	Format   string                `json:"format" yaml:"format"`
	Version  int                   `json:"version" yaml:"version"`
	Comments []string              `json:"comments,omitempty" yaml:"comments,omitempty"`
	ObjInfo  []string              `json:"obj_info,omitempty" yaml:"obj_info,omitempty"`
	Elements []Element             `json:"elements" yaml:"elements"`
	Warnings []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string              `json:"errors,omitempty" yaml:"errors,omitempty"`
	Stats    []columns.ColumnStats `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// FromHeader summarises h.
func FromHeader(h ply.Header) Header {
	out := Header{
		Format:   h.Format.String(),
		Version:  h.Version,
		Comments: h.Comments,
		ObjInfo:  h.ObjInfo,
		Elements: make([]Element, 0, len(h.Elements)),
	}
	for _, e := range h.Elements {
		el := Element{Name: e.Name, Count: e.Count, Properties: make([]Property, 0, len(e.Properties))}
		for _, p := range e.Properties {
			prop := Property{Name: p.Name, Type: p.DType.String()}
			if p.IsList() {
				prop.List = true
				prop.CountType = p.SType.String()
			}
			el.Properties = append(el.Properties, prop)
		}
		out.Elements = append(out.Elements, el)
	}
	return out
}

// FromReader summarises a reader's header together with its diagnostics.
func FromReader(r *ply.Reader) Header {
	out := FromHeader(r.Header())
	out.Warnings = r.Warnings()
	out.Errors = r.Errors()
	return out
}

// Render writes h in the named output format: text, json or yaml.
func Render(w io.Writer, h Header, output string) error {
	switch strings.ToLower(output) {
	case "", "text":
		return renderText(w, h)
	case "json":
		data, err := json.MarshalIndent(h, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(h); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", output)
	}
}

func renderText(w io.Writer, h Header) error {
	var b strings.Builder
	if h.File != "" {
		fmt.Fprintf(&b, "File:    %s\n", h.File)
	}
	fmt.Fprintf(&b, "Format:  %s %d.0\n", h.Format, h.Version)
	for _, c := range h.Comments {
		fmt.Fprintf(&b, "Comment: %s\n", c)
	}
	for _, o := range h.ObjInfo {
		fmt.Fprintf(&b, "ObjInfo: %s\n", o)
	}
	for _, e := range h.Elements {
		fmt.Fprintf(&b, "\nElement %s (%d)\n", e.Name, e.Count)
		for _, p := range e.Properties {
			if p.List {
				fmt.Fprintf(&b, "  %-24s list<%s> of %s\n", p.Name, p.CountType, p.Type)
			} else {
				fmt.Fprintf(&b, "  %-24s %s\n", p.Name, p.Type)
			}
		}
	}
	if len(h.Stats) > 0 {
		fmt.Fprintf(&b, "\n%-32s %8s %14s %14s %14s\n", "Column", "Count", "Min", "Max", "Mean")
		for _, s := range h.Stats {
			fmt.Fprintf(&b, "%-32s %8d %14.6g %14.6g %14.6g\n", s.Element+"."+s.Property, s.Count, s.Min, s.Max, s.Mean)
		}
	}
	for _, msg := range h.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", msg)
	}
	for _, msg := range h.Errors {
		fmt.Fprintf(&b, "error: %s\n", msg)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
