package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/nnkern/internal/api"
	"github.com/samcharles93/nnkern/internal/logger"
	"github.com/samcharles93/nnkern/internal/model"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		rateLimit   float64
		rateBurst   int64
		maxSessions int64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the kernels over HTTP",
		Flags: []cli.Flag{
			modelsPathFlag(),
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
			&cli.Float64Flag{
				Name:        "rate-limit",
				Usage:       "requests per second across all clients (0 = unlimited)",
				Destination: &rateLimit,
			},
			&cli.Int64Flag{
				Name:        "rate-burst",
				Usage:       "rate limiter burst size",
				Value:       32,
				Destination: &rateBurst,
			},
			&cli.Int64Flag{
				Name:        "max-sessions",
				Usage:       "maximum live recurrent sessions (0 = unlimited)",
				Value:       1024,
				Destination: &maxSessions,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, configFrom(ctx), &addr, &rateLimit, &rateBurst, &maxSessions)

			registry := model.NewRegistry(modelsPath)
			if registry.Dir() == "" {
				log.Warn("no models directory configured; only absolute model paths will resolve", "env", model.EnvModelsDir)
			}
			server := api.NewServer(registry, api.NewSessionStore(int(maxSessions)), log)

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			e.Use(api.RateLimit(rateLimit, int(rateBurst)))
			server.Register(e)

			log.Info("starting server", "address", addr, "models", registry.Dir(), "rate_limit", rateLimit)
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
