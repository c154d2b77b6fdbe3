package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/qs-lzh/coaster-review/internal/util"
)

const defaultSessionSecret = "change-me-coaster-review-session-secret"

type Config struct {
	Env            string        `mapstructure:"APP_ENV"`
	Addr           string        `mapstructure:"ADDR"`
	DatabaseDSN    string        `mapstructure:"DATABASE_DSN"`
	CacheURL       string        `mapstructure:"CACHE_URL"`
	MQURL          string        `mapstructure:"RABBIT_MQ_URL"`
	SessionSecret  string        `mapstructure:"SESSION_SECRET"`
	BcryptCost     int           `mapstructure:"BCRYPT_COST"`
	RatingCacheTTL time.Duration `mapstructure:"RATING_CACHE_TTL"`
}

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("ADDR", ":3000")
	v.SetDefault("DATABASE_DSN", "host=localhost port=5432 user=coaster password=coaster dbname=coaster_review sslmode=disable")
	v.SetDefault("CACHE_URL", "localhost:6379")
	v.SetDefault("RABBIT_MQ_URL", "")
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RATING_CACHE_TTL", "10m")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("ADDR is required")
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.RatingCacheTTL <= 0 {
		return errors.New("RATING_CACHE_TTL must be positive")
	}
	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be changed from the default value in production")
		}
		if len(c.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be at least 32 characters in production")
		}
	}
	return nil
}
