package cmd

import (
	"errors"
	"fmt"
	"time"

	"gigmatch/internal/api/middleware"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

// tokenCmd mints bearer tokens for local testing; real tokens come from the
// phone OTP service.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development JWT for a user ID",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JWT.Secret == "" {
			return errors.New("jwt.secret must be set (GIGMATCH_JWT_SECRET)")
		}
		userID := uuid.New()
		if tokenUser != "" {
			var err error
			if userID, err = uuid.Parse(tokenUser); err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
		}
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.JWT.Expiration
		}

		signed, err := middleware.IssueToken(cfg.JWT.Secret, userID, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "user: %s\n", userID)
		fmt.Fprintln(cmd.OutOrStdout(), signed)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user UUID to use as the token subject (random when empty)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default: jwt.expiration)")
	rootCmd.AddCommand(tokenCmd)
}
