package cmd

import (
	"context"
	"log"
	"time"

	"github.com/frahmantamala/agency-ops/pkg/logger"
	"github.com/spf13/cobra"
)

var backupTimeout time.Duration

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a full JSON snapshot to the configured storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		lg := logger.L()

		db, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := initServices(cfg, db, lg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
		defer cancel()

		res, err := svc.Backup.Snapshot(ctx)
		if err != nil {
			return err
		}
		log.Printf("snapshot written: key=%s tables=%d bytes=%d", res.Key, res.Tables, res.Size)
		return nil
	},
}

func init() {
	backupCmd.Flags().DurationVar(&backupTimeout, "timeout", 5*time.Minute, "maximum time to spend writing the snapshot")
}
