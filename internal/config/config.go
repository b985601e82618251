// Package config loads the readlist service configuration from YAML
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Default configuration values.
const (
	defaultServiceName  = "readlist"
	defaultServicePort  = 8095
	defaultVersion      = "0.1.0"
	defaultLoggingLevel = "info"
	defaultLoggingFmt   = "json"
	defaultDBHost       = "localhost"
	defaultDBPort       = 5432
	defaultDBName       = "readlist"
	defaultDBUser       = "postgres"
	defaultDBSSLMode    = "disable"

	defaultFetchTimeout = 5 * time.Second
	defaultFetchUA      = "Mozilla/5.0 (compatible; Readlist/1.0)"
	defaultMaxBodyBytes = 10 * 1024 * 1024

	defaultCacheTTL = 24 * time.Hour

	defaultMaxSavesPerMinute = 30
	defaultWindowSeconds     = 60
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	Port      int    `env:"READLIST_PORT"      yaml:"port"`
	Debug     bool   `env:"APP_DEBUG"          yaml:"debug"`
	JWTSecret string `env:"READLIST_JWT_SECRET" yaml:"jwt_secret"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_READLIST_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_READLIST_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_READLIST_USER"     yaml:"user"`
	Password string `env:"POSTGRES_READLIST_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_READLIST_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_READLIST_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// FetchConfig holds preview-fetch configuration.
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// CacheConfig holds the optional Redis metadata cache configuration.
type CacheConfig struct {
	Enabled  bool          `env:"READLIST_CACHE_ENABLED" yaml:"enabled"`
	Addr     string        `env:"READLIST_REDIS_ADDR"    yaml:"addr"`
	Password string        `env:"READLIST_REDIS_PASSWORD" yaml:"password"`
	TTL      time.Duration `yaml:"ttl"`
}

// RateLimitConfig holds save rate limiting configuration.
type RateLimitConfig struct {
	MaxSavesPerMinute int `yaml:"max_saves_per_minute"`
	WindowSeconds     int `yaml:"window_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setFetchDefaults(&cfg.Fetch)
	setCacheDefaults(&cfg.Cache)
	setRateLimitDefaults(&cfg.RateLimit)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

func setFetchDefaults(f *FetchConfig) {
	if f.Timeout == 0 {
		f.Timeout = defaultFetchTimeout
	}
	if f.UserAgent == "" {
		f.UserAgent = defaultFetchUA
	}
	if f.MaxBodyBytes == 0 {
		f.MaxBodyBytes = defaultMaxBodyBytes
	}
}

func setCacheDefaults(c *CacheConfig) {
	if c.TTL == 0 {
		c.TTL = defaultCacheTTL
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.MaxSavesPerMinute == 0 {
		rl.MaxSavesPerMinute = defaultMaxSavesPerMinute
	}
	if rl.WindowSeconds == 0 {
		rl.WindowSeconds = defaultWindowSeconds
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
	if log.Format == "" {
		log.Format = defaultLoggingFmt
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("service.port: %d is out of range", c.Service.Port)
	}
	if c.Service.JWTSecret == "" {
		return errors.New("service.jwt_secret: is required")
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return errors.New("cache.addr: is required when cache is enabled")
	}
	return nil
}
