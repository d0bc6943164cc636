package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/soulthread/memoria/pkg/auth"
	"github.com/soulthread/memoria/pkg/metrics"
	"github.com/soulthread/memoria/pkg/server"
	"github.com/soulthread/memoria/pkg/usecase/memories"
	"github.com/soulthread/memoria/pkg/usecase/usage"
	"github.com/soulthread/memoria/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg         config
		addr        string
		rateLimit   bool
		recordUsage bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Usage:       "Listen address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MEMORIA_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "rate-limit",
			Usage:       "Enforce daily request quotas per license tier",
			Sources:     cli.EnvVars("MEMORIA_RATE_LIMIT"),
			Destination: &rateLimit,
		},
		&cli.BoolFlag{
			Name:        "record-usage",
			Usage:       "Record per partner daily usage in the apiUsage collection",
			Value:       true,
			Sources:     cli.EnvVars("MEMORIA_RECORD_USAGE"),
			Destination: &recordUsage,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, authFlags(&cfg)...)
	flags = append(flags, embeddingFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the partner read API over HTTP",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setupLogger(ctx)
			if err != nil {
				return err
			}

			// Initialize dependencies
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			perms, err := cfg.newPolicy(ctx)
			if err != nil {
				return err
			}

			registry, err := cfg.newRegistry(repo)
			if err != nil {
				return err
			}

			embedder, err := cfg.newEmbedder(ctx)
			if err != nil {
				return err
			}

			opts := []server.Option{server.WithMetrics(metrics.New())}
			if rateLimit {
				opts = append(opts, server.WithRateLimiter(server.NewRateLimiter()))
			}
			if recordUsage {
				opts = append(opts, server.WithRecorder(usage.New(repo)))
			}

			srv := server.New(
				memories.New(repo, memories.WithEmbedder(embedder)),
				auth.NewGate(registry, perms),
				opts...,
			)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logging.From(ctx).Info("starting memoria",
				"version", Version,
				"embedder", cfg.embedder,
				"rate_limit", rateLimit,
				"record_usage", recordUsage)
			return srv.Run(ctx, addr)
		},
	}
}
