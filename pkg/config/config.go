// Package config provides unified configuration for the lawlibrary API.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix fields)
//  5. Validation
//
// Configuration is read once at startup; there is no hot reload.
package config

import "time"

// Config holds all configuration for the lawlibrary API.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 15s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MiB
}

// StorageConfig selects and configures the account store.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	DSNFile         string        `yaml:"dsn_file"`           // _file variant for dsn
	MaxConns        int32         `yaml:"max_conns"`          // default: 20
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"` // default: 30s
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`    // default: 2s
	MigrateOnStart  bool          `yaml:"migrate_on_start"`   // default: false
}

// AuthConfig holds credential and token settings.
type AuthConfig struct {
	// JWTSecret signs and verifies tokens. Required; there is no default.
	JWTSecret     string          `yaml:"jwt_secret"`
	JWTSecretFile string          `yaml:"jwt_secret_file"` // _file variant for jwt_secret
	Issuer        string          `yaml:"issuer"`          // default: "mylawmanager-api"
	TokenTTL      time.Duration   `yaml:"token_ttl"`       // default: 24h
	BcryptCost    int             `yaml:"bcrypt_cost"`     // default: 12
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds per-subscription-tier request limits.
// A limit of zero means unlimited.
type RateLimitConfig struct {
	DefaultRPM int            `yaml:"default_rpm"` // default: 0
	Tiers      map[string]int `yaml:"tiers"`       // tier -> requests per minute
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log output settings. LAWLIBRARY_LOG_LEVEL and
// LAWLIBRARY_DEBUG take precedence over these values.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // default: "INFO"
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodySize:     1 << 20,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns:        20,
				MaxConnIdleTime: 30 * time.Second,
				ConnectTimeout:  2 * time.Second,
			},
		},
		Auth: AuthConfig{
			Issuer:     "mylawmanager-api",
			TokenTTL:   24 * time.Hour,
			BcryptCost: 12,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			Logging: LoggingConfig{
				Level:  "INFO",
				Format: "text",
			},
		},
	}
}
