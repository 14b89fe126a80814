package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/agency-ops/pkg/logger"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Session maintenance commands",
}

var sessionsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired login sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		db, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := initServices(cfg, db, logger.L())
		if err != nil {
			return err
		}

		removed, err := svc.Auth.CleanupExpired(context.Background())
		if err != nil {
			return err
		}
		log.Printf("removed %d expired sessions", removed)
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsCleanupCmd)
}
