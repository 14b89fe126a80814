package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "agency-ops",
	Short: "Agency Ops",
	Long:  `Back office for a marketing agency: clients, campaigns, finance, payroll and reporting.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads config.yml from path on top of the environment defaults.
// Production and container deployments read the environment only.
func loadConfig(path string) (*internal.Config, error) {
	cfg, err := internal.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	if os.Getenv("APP_ENV") != "production" && os.Getenv("DOCKER_ENV") != "true" {
		v := viper.New()
		v.AddConfigPath(path)
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.SetEnvPrefix("ENV")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("error unmarshaling config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	logger.Configure(cfg.Logging.Format, cfg.Logging.Level)
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(sessionsCmd)
}
