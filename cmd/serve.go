package cmd

import (
	"context"
	"errors"
	"fmt"

	"gigmatch/internal/app"
	"gigmatch/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JWT.Secret == "" {
			return errors.New("jwt.secret must be set (GIGMATCH_JWT_SECRET)")
		}
		ctx := cmd.Context()

		application, err := app.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		defer func() {
			if err := application.Close(); err != nil {
				zap.L().Warn("error closing application", zap.Error(err))
			}
		}()

		// the geo index may be empty (memory) or stale (redis) after a restart
		if err := application.Matching.Reindex(ctx); err != nil {
			return fmt.Errorf("failed to build geo index: %w", err)
		}

		srv := server.NewServer(application)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		err = g.Wait()
		zap.L().Info("application stopped")
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
