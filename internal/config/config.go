// Package config loads application configuration from a yaml file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	Env        string `mapstructure:"env"`         // local, dev, prod
	ListenAddr string `mapstructure:"listen_addr"` // HTTP bind address
	DBPath     string `mapstructure:"-"`           // SQLite file, from env or flag

	Cache Cache `mapstructure:"cache"`
}

// Cache configures the question cache and its eviction sweep.
type Cache struct {
	Capacity      int           `mapstructure:"capacity"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// Load reads configuration from ./config/config.yaml (optional) and
// environment variables (MATHTRAIL_ prefix wins).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("cache.capacity", 1000)
	v.SetDefault("cache.ttl", "2h")
	v.SetDefault("cache.sweep_interval", "1h")

	v.SetEnvPrefix("MATHTRAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("env", "MATHTRAIL_ENV")
	_ = v.BindEnv("listen_addr", "MATHTRAIL_LISTEN_ADDR")
	_ = v.BindEnv("db", "MATHTRAIL_DB")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.DBPath = v.GetString("db")

	if cfg.Cache.Capacity <= 0 {
		return nil, fmt.Errorf("cache.capacity must be positive, got %d", cfg.Cache.Capacity)
	}
	return &cfg, nil
}
