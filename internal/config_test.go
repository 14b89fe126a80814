package internal_test

import (
	"strings"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{
			Port:              8080,
			AllowedOrigins:    "*",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
		},
		Database: internal.DatabaseConfig{Driver: "sqlite", Source: "file::memory:", MaxOpenConns: 5, MaxIdleConns: 1},
		Security: internal.SecurityConfig{SessionSecret: strings.Repeat("s", 32), SessionTTL: 24 * time.Hour},
		Storage:  internal.StorageConfig{Type: "local", LocalDir: "data/backups"},
		Logging:  internal.LoggingConfig{Level: "info", Format: "json"},
	}
}

var _ = Describe("Config", func() {
	It("accepts a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("rejects short session secrets", func() {
		cfg := validConfig()
		cfg.Security.SessionSecret = "short"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("session secret")))
	})

	It("requires bucket and region for s3 storage", func() {
		cfg := validConfig()
		cfg.Storage.Type = "s3"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("s3_bucket")))

		cfg.Storage.S3Bucket = "backups"
		cfg.Storage.S3Region = "ap-southeast-1"
		Expect(cfg.Validate()).To(Succeed())
	})

	It("reports every invalid section at once", func() {
		cfg := validConfig()
		cfg.Server.Port = 0
		cfg.Database.Driver = "mysql"
		err := cfg.Validate()
		Expect(err).To(MatchError(ContainSubstring("server config")))
		Expect(err).To(MatchError(ContainSubstring("database config")))
	})

	It("reads defaults from the environment", func() {
		cfg, err := internal.LoadConfigFromEnv()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Security.SessionTTL).To(Equal(24 * time.Hour))
		Expect(cfg.Storage.Type).To(Equal("local"))
	})
})
