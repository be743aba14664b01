package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gigmatch/config"
	"gigmatch/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gigmatch",
	Short: "Job matching and lifecycle engine for local gig work",
	Long: `gigmatch matches hirers with nearby service providers, runs jobs from
posting to PIN-confirmed completion and keeps the providers' earnings ledger.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if _, err := logger.New(loaded.Log); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if loaded.ConfigFile != "" {
			zap.L().Info("configuration loaded", zap.String("file", loaded.ConfigFile))
		} else {
			zap.L().Info("config file not found, using defaults and environment variables")
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (default: ./config.yaml)")
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = zap.L().Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
