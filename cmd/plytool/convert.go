package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/plyio/internal/columns"
	"github.com/samcharles93/plyio/internal/logger"
	"github.com/samcharles93/plyio/internal/plyfs"
	"github.com/samcharles93/plyio/pkg/ply"
)

type convertOptions struct {
	In           string
	Out          string
	Format       string
	ListCapacity int
	Comments     []string
}

func convertCmd() *cli.Command {
	var opts convertOptions

	return &cli.Command{
		Name:  "convert",
		Usage: "Re-encode a PLY file as ascii or binary",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "in",
				Aliases:     []string{"i"},
				Usage:       "input .ply or .ply.br file",
				Required:    true,
				Destination: &opts.In,
			},
			&cli.StringFlag{
				Name:        "out",
				Usage:       "output path (default: $PLYTOOL_OUT_DIR or ./out, same file name)",
				Destination: &opts.Out,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "ascii, binary, binary_little_endian or binary_big_endian",
				Value:       "binary_little_endian",
				Destination: &opts.Format,
			},
			&cli.StringSliceFlag{
				Name:        "comment",
				Usage:       "extra comment line for the output header (repeatable)",
				Destination: &opts.Comments,
			},
			listCapacityFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			applyCodecConfig(c, appConfig, &opts.Format)
			opts.ListCapacity = listCapacity

			out, defaulted, err := resolveConvertOut(opts.In, opts.Out)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if defaulted {
				logger.FromContext(ctx).Info("output path defaulted", "out", out)
			}
			opts.Out = out

			if err := runConvert(ctx, opts); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return nil
		},
	}
}

func runConvert(ctx context.Context, opts convertOptions) (err error) {
	log := logger.FromContext(ctx).With("in", opts.In)

	format, err := columns.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	rc, err := plyfs.Open(opts.In)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	r := ply.NewReader()
	if err := r.ReadHeader(rc); err != nil {
		return err
	}
	topts, err := tableOptions(opts.In, opts.ListCapacity)
	if err != nil {
		return err
	}
	tbl, err := columns.Load(r, rc, topts)
	if err != nil {
		return err
	}
	logDiagnostics(log, &r.Diagnostics)

	w, err := tbl.Writer(format, opts.Comments...)
	switch {
	case errors.Is(err, columns.ErrListTruncated):
		return fmt.Errorf("%w; raise --list-capacity", err)
	case errors.Is(err, columns.ErrRaggedList):
		return fmt.Errorf("%w; lists of mixed lengths cannot be re-encoded", err)
	case err != nil:
		return err
	}
	wc, err := plyfs.Create(opts.Out)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, wc.Close()) }()

	if err := w.Write(wc); err != nil {
		return err
	}
	log.Info("converted", "out", opts.Out, "format", format, "columns", len(tbl.Columns))
	return nil
}
