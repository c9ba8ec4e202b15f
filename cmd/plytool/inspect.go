package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/plyio/internal/columns"
	"github.com/samcharles93/plyio/internal/logger"
	"github.com/samcharles93/plyio/internal/plyfs"
	"github.com/samcharles93/plyio/internal/report"
	"github.com/samcharles93/plyio/pkg/ply"
)

type inspectOptions struct {
	Path         string
	Output       string
	Stats        bool
	ListCapacity int
}

func inspectCmd() *cli.Command {
	var opts inspectOptions

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header of a PLY file, optionally with column statistics",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to .ply or .ply.br file",
				Destination: &opts.Path,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output format (text, json, yaml)",
				Value:       "text",
				Destination: &opts.Output,
			},
			&cli.BoolFlag{Name: "stats", Usage: "read the body and print min/max/mean per column", Destination: &opts.Stats},
			listCapacityFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if opts.Path == "" {
				opts.Path = c.Args().First()
			}
			if opts.Path == "" {
				return cli.Exit("error: --file is required", 1)
			}
			applyCodecConfig(c, appConfig, nil)
			opts.ListCapacity = listCapacity

			if err := runInspect(ctx, os.Stdout, opts); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return nil
		},
	}
}

func runInspect(ctx context.Context, w io.Writer, opts inspectOptions) error {
	log := logger.FromContext(ctx).With("file", opts.Path)

	rc, err := plyfs.Open(opts.Path)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	r := ply.NewReader()
	if err := r.ReadHeader(rc); err != nil {
		return err
	}
	logDiagnostics(log, &r.Diagnostics)

	out := report.FromReader(r)
	out.File = opts.Path
	if opts.Stats {
		topts, err := tableOptions(opts.Path, opts.ListCapacity)
		if err != nil {
			return err
		}
		tbl, err := columns.Load(r, rc, topts)
		if err != nil {
			return err
		}
		out.Stats = tbl.Stats()
		log.Debug("body read", "columns", len(tbl.Columns))
	}
	return report.Render(w, out, opts.Output)
}

// tableOptions bounds column storage by the decoded size of path, so a
// header cannot declare more rows than the file holds.
func tableOptions(path string, listCapacity int) (columns.Options, error) {
	size, err := plyfs.DecodedSize(path)
	if err != nil {
		return columns.Options{}, err
	}
	return columns.Options{ListCapacity: listCapacity, BodyBytes: size}, nil
}

// logDiagnostics reports codec warnings and errors through the logger.
func logDiagnostics(log logger.Logger, d *ply.Diagnostics) {
	for _, msg := range d.Warnings() {
		log.Warn("ply warning", "detail", msg)
	}
	for _, msg := range d.Errors() {
		log.Error("ply error", "detail", msg)
	}
}
