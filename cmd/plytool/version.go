package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/plyio/internal/version"
)

func versionCmd() *cli.Command {
	var output string

	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output format (text, json, yaml)",
				Value:       "text",
				Destination: &output,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := printVersion(os.Stdout, version.Resolve(), output); err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}
			return nil
		},
	}
}

func printVersion(w io.Writer, info version.Info, output string) error {
	switch output {
	case "json":
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "yaml":
		return yaml.NewEncoder(w).Encode(info)
	case "", "text":
	default:
		return fmt.Errorf("unknown output format %q", output)
	}

	_, _ = fmt.Fprintf(w, "version:    %s\n", info.Version)
	if info.Commit != "" {
		_, _ = fmt.Fprintf(w, "commit:     %s\n", info.Commit)
	}
	if info.BuildTime != "" {
		_, _ = fmt.Fprintf(w, "build time: %s\n", info.BuildTime)
	}
	return nil
}
