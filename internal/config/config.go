// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Reconcile  ReconcileConfig  `mapstructure:"reconcile"`
	Conditions ConditionsConfig `mapstructure:"conditions"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// ServerConfig holds the observability endpoint configuration.
type ServerConfig struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// ReconcileConfig holds maintenance sweep configuration.
type ReconcileConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ConditionsConfig holds default thresholds used when an achievement's
// requirement text names a condition kind but no number.
type ConditionsConfig struct {
	EventCount       int64 `mapstructure:"event_count"`
	PointsThreshold  int64 `mapstructure:"points_threshold"`
	AchievementCount int64 `mapstructure:"achievement_count"`
	PurchaseCount    int64 `mapstructure:"purchase_count"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the given directory; a missing file is
// fine since env vars can provide all configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. DATABASE_HOST, RECONCILE_SWEEP_INTERVAL.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "points")
	v.SetDefault("database.name", "points")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("server.metrics_addr", ":9090")

	v.SetDefault("reconcile.sweep_interval", "1h")

	v.SetDefault("conditions.event_count", 1)
	v.SetDefault("conditions.points_threshold", 50)
	v.SetDefault("conditions.achievement_count", 3)
	v.SetDefault("conditions.purchase_count", 1)
}
