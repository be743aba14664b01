package cmd

import (
	"errors"

	"gigmatch/internal/database"
	"gigmatch/internal/storage/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Storage.Driver != "postgres" {
			return errors.New("migrate requires storage.driver=postgres")
		}
		pool, err := database.NewConnectionPool(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		zap.L().Info("schema applied", zap.String("database", cfg.DB.Name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
