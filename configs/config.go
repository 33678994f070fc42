package configs

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Log      LogConfig
	Jobs     JobsConfig
	Telegram TelegramConfig
	Vault    VaultConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port     string `env:"PORT" envDefault:"8080"`
	OpsPort  string `env:"OPS_PORT" envDefault:"8081"`
	Env      string `env:"GO_ENV" envDefault:"development"`
	Timezone string `env:"TZ" envDefault:"UTC"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	MinConns int32  `env:"DATABASE_MIN_CONNS" envDefault:"2"`
}

// AuthConfig holds identity provider token settings
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET" envDefault:"default-secret-change-in-production"`
	Issuer    string `env:"JWT_ISSUER"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`
	Output     string `env:"LOG_OUTPUT" envDefault:"stdout"`
	MaxSize    int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAge     int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`
}

// JobsConfig holds background job settings
type JobsConfig struct {
	SweepSpec         string        `env:"JOB_SWEEP_SPEC" envDefault:"0 * * * *"`
	ReminderSpec      string        `env:"JOB_REMINDER_SPEC" envDefault:"0 9 * * *"`
	PruneSpec         string        `env:"JOB_PRUNE_SPEC" envDefault:"30 3 * * *"`
	ReminderDays      int           `env:"REMINDER_DAYS" envDefault:"3"`
	SignalRetention   time.Duration `env:"SIGNAL_RETENTION" envDefault:"2160h"`
	SyncMinDuration   time.Duration `env:"SYNC_MIN_DURATION" envDefault:"500ms"`
	SyncSafetyTimeout time.Duration `env:"SYNC_SAFETY_TIMEOUT" envDefault:"30s"`
}

// TelegramConfig holds Telegram notification settings
type TelegramConfig struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `env:"TELEGRAM_CHAT_ID"`
}

// VaultConfig holds the key used to seal API credential secrets
type VaultConfig struct {
	Key  string `env:"CREDENTIALS_KEY"`
	Salt string `env:"CREDENTIALS_SALT" envDefault:"botdash-credentials"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
