package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/plyio/internal/logger"
)

var (
	configFile   string
	logLevel     string
	logFormat    string
	debug        bool
	listCapacity int
	appConfig    Config
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml or config.toml (default: user config dir)",
			Sources:     cli.EnvVars(envPlytoolConfig),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, plain, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func listCapacityFlag() cli.Flag {
	return &cli.IntFlag{
		Name:        "list-capacity",
		Usage:       "slots kept per list row; longer lists are truncated",
		Value:       4,
		Destination: &listCapacity,
	}
}

// setup loads the config file and installs the logger into the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, cli.Exit("error: "+err.Error(), 1)
	}
	appConfig = cfg
	applyLoggingConfig(cmd, cfg)

	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}
	log := logger.NewForFormat(logFormat, level, os.Stderr)
	return logger.WithContext(ctx, log), nil
}
