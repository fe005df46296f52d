package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL        string // postgres URL, or sqlite://<path>
	TelegramToken      string // optional; the bot is disabled when empty
	AdminTelegramID    int64
	LogLevel           string
	Environment        string
	CronSpecRepetition string // When due repetitions are processed
	CopyPlansPath      string // Optional YAML file with per record type copy plans
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
		if adminIDStr == "" {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
		}
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecRepetition = os.Getenv("CRON_SPEC_REPETITION")
	if cfg.CronSpecRepetition == "" {
		cfg.CronSpecRepetition = "0 1 * * *" // Default: 01:00 daily
	}

	cfg.CopyPlansPath = os.Getenv("COPY_PLANS_PATH")

	return cfg, nil
}

// BotEnabled reports whether the Telegram surface should be started.
func (c *AppConfig) BotEnabled() bool {
	return c.TelegramToken != ""
}
