package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"http_server" envPrefix:"HTTP_"`
	Database     DatabaseConfig     `mapstructure:"database" envPrefix:"DB_"`
	Security     SecurityConfig     `mapstructure:"security" envPrefix:"SECURITY_"`
	Storage      StorageConfig      `mapstructure:"storage" envPrefix:"STORAGE_"`
	Notification NotificationConfig `mapstructure:"notification" envPrefix:"NOTIFICATION_"`
	Logging      LoggingConfig      `mapstructure:"logging" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" env:"PORT" envDefault:"8080"`
	BaseURL           string        `mapstructure:"base_url" env:"BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" env:"ALLOWED_ORIGINS" envDefault:"*"`
	OpenAPIPath       string        `mapstructure:"openapi_path" env:"OPENAPI_PATH" envDefault:"./api/openapi.yml"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" env:"READ_TIMEOUT" envDefault:"30s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"IDLE_TIMEOUT" envDefault:"60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"WRITE_TIMEOUT" envDefault:"60s"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" env:"DRIVER" envDefault:"postgres"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" env:"CONN_MAX_IDLE_TIME" envDefault:"5m"`
	Source          string        `mapstructure:"source" env:"SOURCE"`
}

type SecurityConfig struct {
	SessionSecret string        `mapstructure:"session_secret" env:"SESSION_SECRET"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" env:"SESSION_TTL" envDefault:"24h"`
	BCryptCost    int           `mapstructure:"bcrypt_cost" env:"BCRYPT_COST" envDefault:"10"`
}

type StorageConfig struct {
	Type     string `mapstructure:"type" env:"TYPE" envDefault:"local"`
	LocalDir string `mapstructure:"local_dir" env:"LOCAL_DIR" envDefault:"data/backups"`

	S3Region          string `mapstructure:"s3_region" env:"S3_REGION"`
	S3Bucket          string `mapstructure:"s3_bucket" env:"S3_BUCKET"`
	S3Prefix          string `mapstructure:"s3_prefix" env:"S3_PREFIX"`
	S3Endpoint        string `mapstructure:"s3_endpoint" env:"S3_ENDPOINT"`
	S3AccessKeyID     string `mapstructure:"s3_access_key_id" env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	S3SessionToken    string `mapstructure:"s3_session_token" env:"S3_SESSION_TOKEN"`
	S3ForcePathStyle  bool   `mapstructure:"s3_force_path_style" env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
}

type NotificationConfig struct {
	TelegramAPIURL string        `mapstructure:"telegram_api_url" env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	EmailAPIURL    string        `mapstructure:"email_api_url" env:"EMAIL_API_URL" envDefault:"https://api.resend.com"`
	Timeout        time.Duration `mapstructure:"timeout" env:"TIMEOUT" envDefault:"10s"`
	MaxWorkers     int           `mapstructure:"max_workers" env:"MAX_WORKERS" envDefault:"4"`
	JobQueueSize   int           `mapstructure:"job_queue_size" env:"JOB_QUEUE_SIZE" envDefault:"100"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"LEVEL" envDefault:"info"`
	Format string `mapstructure:"format" env:"FORMAT" envDefault:"json"`
}

// LoadConfigFromEnv builds the configuration from environment variables only.
// It is used in container deployments where no config.yml is mounted.
func LoadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	return &cfg, nil
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.SessionSecret) < 32 {
		return errors.New("session secret must be at least 32 characters")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.BCryptCost != 0 && (c.BCryptCost < 4 || c.BCryptCost > 15) {
		return errors.New("bcrypt_cost must be between 4 and 15")
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Type)) {
	case "", "local":
		return nil
	case "s3":
		if c.S3Bucket == "" || c.S3Region == "" {
			return errors.New("s3 storage requires s3_bucket and s3_region")
		}
		return nil
	default:
		return fmt.Errorf("unsupported storage type %q", c.Type)
	}
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	switch c.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Format)
	}
	return nil
}
