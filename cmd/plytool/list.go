package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/plyio/internal/logger"
	"github.com/samcharles93/plyio/internal/plyfs"
	"github.com/samcharles93/plyio/pkg/ply"
)

func listCmd() *cli.Command {
	var dataDir string

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List PLY files in a directory with their format and element counts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "path",
				Usage:       "directory containing .ply files",
				Destination: &dataDir,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := resolveDataDir(dataDir, appConfig)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}
			if err := runList(ctx, os.Stdout, dir); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return nil
		},
	}
}

func runList(ctx context.Context, w io.Writer, dir string) error {
	log := logger.FromContext(ctx)

	files, err := plyfs.Discover(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Info("no ply files found", "path", dir)
		return nil
	}

	_, _ = fmt.Fprintf(w, "PLY files in %s:\n\n", dir)
	for _, path := range files {
		name := filepath.Base(path)
		size := "?"
		if info, err := os.Stat(path); err == nil {
			size = formatSize(info.Size())
		}
		summary, err := summarize(path)
		if err != nil {
			log.Warn("unreadable header", "file", name, "error", err)
			summary = "(invalid header)"
		}
		_, _ = fmt.Fprintf(w, "  %-40s %10s  %s\n", name, size, summary)
	}
	_, _ = fmt.Fprintf(w, "\n%d file(s) found\n", len(files))
	return nil
}

// summarize returns "format  element=count ..." for the file at path.
func summarize(path string) (string, error) {
	rc, err := plyfs.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	r := ply.NewReader()
	if err := r.ReadHeader(rc); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(r.Elements()))
	for _, e := range r.Elements() {
		parts = append(parts, fmt.Sprintf("%s=%d", e.Name, e.Count))
	}
	return fmt.Sprintf("%-20s %s", r.Format(), strings.Join(parts, " ")), nil
}
