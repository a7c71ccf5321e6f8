// Package config provides application configuration.
package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., CACHE_REDIS_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.doclink
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/doclink.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIKeys is a comma-separated list of valid API keys.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// AdminUsername is the username bootstrapped as superuser on startup.
	// Env: ADMIN_USERNAME (default: admin)
	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`

	// Cache configures the authorization decision cache.
	Cache CacheEnv `envconfig:"CACHE"`

	// Scheduler configures the workflow trigger scheduler.
	Scheduler SchedulerEnv `envconfig:"SCHEDULER"`
}

// CacheEnv holds environment configuration for the authorization cache.
type CacheEnv struct {
	// Backend selects the cache implementation (memory or redis).
	// Env: CACHE_BACKEND (default: memory)
	Backend string `envconfig:"BACKEND" default:"memory"`

	// RedisURL is the redis connection URL for the redis backend.
	// Env: CACHE_REDIS_URL
	RedisURL string `envconfig:"REDIS_URL"`

	// TTLSeconds is how long cached decisions stay valid, in seconds.
	// Env: CACHE_TTL_SECONDS (default: 300)
	TTLSeconds float64 `envconfig:"TTL_SECONDS" default:"300"`

	// MaxEntries is the entry cap for the in-memory backend.
	// Env: CACHE_MAX_ENTRIES (default: 4096)
	MaxEntries int `envconfig:"MAX_ENTRIES" default:"4096"`
}

// SchedulerEnv holds environment configuration for the trigger scheduler.
type SchedulerEnv struct {
	// Enabled controls whether the scheduler runs.
	// Env: SCHEDULER_ENABLED (default: true)
	Enabled bool `envconfig:"ENABLED" default:"true"`

	// Schedule is the cron expression for trigger scans.
	// Env: SCHEDULER_SCHEDULE (default: @every 1m)
	Schedule string `envconfig:"SCHEDULE" default:"@every 1m"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "DOCLINK" would require DOCLINK_DATA_DIR instead of
// DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	// Apply overrides from environment
	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.APIKeys != "" {
		cfg = applyOption(cfg, WithAPIKeys(ParseAPIKeys(e.APIKeys)))
	}
	if e.AdminUsername != "" {
		cfg = applyOption(cfg, WithAdminUsername(e.AdminUsername))
	}

	cfg = applyOption(cfg, WithCacheConfig(e.Cache.ToCacheConfig()))
	cfg = applyOption(cfg, WithSchedulerConfig(e.Scheduler.ToSchedulerConfig()))

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// ToCacheConfig converts CacheEnv to CacheConfig.
func (c CacheEnv) ToCacheConfig() CacheConfig {
	cfg := NewCacheConfig().
		WithBackend(parseCacheBackend(c.Backend)).
		WithRedisURL(c.RedisURL)
	if c.TTLSeconds > 0 {
		cfg = cfg.WithTTL(time.Duration(c.TTLSeconds * float64(time.Second)))
	}
	if c.MaxEntries > 0 {
		cfg = cfg.WithMaxEntries(c.MaxEntries)
	}
	return cfg
}

// ToSchedulerConfig converts SchedulerEnv to SchedulerConfig.
func (s SchedulerEnv) ToSchedulerConfig() SchedulerConfig {
	cfg := NewSchedulerConfig().WithEnabled(s.Enabled)
	if s.Schedule != "" {
		cfg = cfg.WithSchedule(s.Schedule)
	}
	return cfg
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

// parseCacheBackend parses a cache backend string.
func parseCacheBackend(s string) CacheBackend {
	switch strings.ToLower(s) {
	case "redis":
		return CacheBackendRedis
	default:
		return CacheBackendMemory
	}
}
