// Package config loads server configuration from file and environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the simulation server.
type Config struct {
	Server     ServerConfig
	Subgraph   SubgraphConfig
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SubgraphConfig holds the trade source endpoint configuration.
type SubgraphConfig struct {
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
}

// PostgresConfig holds the result store configuration.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	ConnectTimeout time.Duration
	Enabled        bool
}

// ClickHouseConfig holds the trade archive configuration.
// When enabled, archived trades are preferred over the subgraph.
type ClickHouseConfig struct {
	DSN     string
	Enabled bool
}

// RedisConfig holds the progress/trade sink configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TradeTTL time.Duration
	Enabled  bool
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from an optional file and environment
// variables. An empty path skips the file and uses defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("SIM")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "120s")

	v.SetDefault("subgraph.endpoint", "https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v3")
	v.SetDefault("subgraph.timeout", "30s")
	v.SetDefault("subgraph.maxRetries", 3)

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.dsn", "postgres://localhost:5432/uniswap_sim?sslmode=disable")
	v.SetDefault("postgres.maxConns", 4)
	v.SetDefault("postgres.connectTimeout", "5s")

	v.SetDefault("clickhouse.enabled", false)
	v.SetDefault("clickhouse.dsn", "clickhouse://localhost:9000/uniswap_sim")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tradeTTL", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
