package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string `mapstructure:"PORT"`
	StorageBackend string `mapstructure:"STORAGE_BACKEND"` // "postgres" or "redis"

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	WorkerIntervalSeconds  int    `mapstructure:"WORKER_INTERVAL_SECONDS"`
	BatchLimit             int    `mapstructure:"BATCH_LIMIT"`
	DeliveryTimeoutSeconds int    `mapstructure:"DELIVERY_TIMEOUT_SECONDS"`
	RetentionDays          int    `mapstructure:"RETENTION_DAYS"`
	WebhooksFile           string `mapstructure:"WEBHOOKS_FILE"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("STORAGE_BACKEND", "postgres")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("WORKER_INTERVAL_SECONDS", 10)
	viper.SetDefault("BATCH_LIMIT", 100)
	viper.SetDefault("DELIVERY_TIMEOUT_SECONDS", 30)
	viper.SetDefault("RETENTION_DAYS", 30)
	viper.SetDefault("WEBHOOKS_FILE", "webhooks.yaml")

	// A missing .env is fine; the environment alone can configure everything
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}

	if config.StorageBackend != "postgres" && config.StorageBackend != "redis" {
		return nil, fmt.Errorf("unsupported storage backend: %s", config.StorageBackend)
	}

	return &config, nil
}

// WorkerInterval returns how often the worker polls for due deliveries
func (c *Config) WorkerInterval() time.Duration {
	return time.Duration(c.WorkerIntervalSeconds) * time.Second
}

// DeliveryTimeout returns the per-request timeout for outbound deliveries
func (c *Config) DeliveryTimeout() time.Duration {
	return time.Duration(c.DeliveryTimeoutSeconds) * time.Second
}
