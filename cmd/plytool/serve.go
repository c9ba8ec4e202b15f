package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/plyio/internal/api"
	"github.com/samcharles93/plyio/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr             string
		readTimeout      time.Duration
		maxUploadBytes   int64
		maxTableBytes    int64
		uploadsPerSecond float64
		maxResults       int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API for header inspection and conversion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-upload-bytes",
				Usage:       "largest accepted upload",
				Value:       api.DefaultMaxUploadBytes,
				Destination: &maxUploadBytes,
			},
			&cli.Int64Flag{
				Name:        "max-table-bytes",
				Usage:       "largest column storage one upload may allocate",
				Value:       api.DefaultMaxTableBytes,
				Destination: &maxTableBytes,
			},
			&cli.Float64Flag{
				Name:        "uploads-per-second",
				Usage:       "token bucket rate for uploads",
				Value:       api.DefaultUploadsPerSecond,
				Destination: &uploadsPerSecond,
			},
			&cli.IntFlag{
				Name:        "max-results",
				Usage:       "converted files kept in memory before the oldest is dropped",
				Value:       api.DefaultMaxResults,
				Destination: &maxResults,
			},
			listCapacityFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, appConfig, &addr, &maxUploadBytes, &uploadsPerSecond)
			log := logger.FromContext(ctx)

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(api.NewResultStore(maxResults), api.Config{
				MaxUploadBytes:   maxUploadBytes,
				MaxTableBytes:    maxTableBytes,
				UploadsPerSecond: uploadsPerSecond,
				ListCapacity:     listCapacity,
				Logger:           log.With("component", "api"),
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "max_upload_bytes", maxUploadBytes)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
