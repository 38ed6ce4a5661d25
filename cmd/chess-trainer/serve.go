package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lgbarn/chess-trainer-go/internal/cache"
	"github.com/lgbarn/chess-trainer-go/internal/server"
	"github.com/lgbarn/chess-trainer-go/internal/session"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		Long: `Serves the trainer API until interrupted. Sessions live in memory and
expire after the configured idle time. SIGINT or SIGTERM starts a graceful
shutdown; open chat sockets are closed with a going-away frame.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// serve runs the API server, the session sweeper and the cache purger until
// ctx is done or one of them fails. A nil ln listens on the configured
// address.
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	svc, responses, err := a.newCoach(ctx)
	if err != nil {
		return err
	}
	sessions := session.NewStore(a.cfg.SessionTTL(), session.WithLogger(a.logger))
	srv := server.New(svc, sessions,
		server.WithLogger(a.logger),
		server.WithAllowedOrigins(a.cfg.Server.AllowedOrigins))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if ln != nil {
			return srv.Serve(ctx, ln, a.cfg)
		}
		return srv.Run(ctx, a.cfg)
	})
	g.Go(func() error {
		return sessions.Run(ctx, a.cfg.SweepInterval())
	})
	if responses != nil {
		g.Go(func() error {
			return purge(ctx, responses, a.cfg.CacheTTL(), a.logger)
		})
	}
	return g.Wait()
}

// purge drops expired cache entries every interval until ctx is done.
func purge(ctx context.Context, c *cache.Cache, interval time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := c.Purge(); n > 0 {
				logger.Debug("expired agent responses purged", zap.Int("count", n))
			}
		}
	}
}
