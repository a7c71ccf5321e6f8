// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultLogLevel        = "INFO"
	DefaultVersionSubdir   = "versions"
	DefaultAdminUsername   = "admin"
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheMaxEntries = 4096
	DefaultSchedulerSpec   = "@every 1m"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// CacheBackend identifies the authorization cache implementation.
type CacheBackend string

// CacheBackend values.
const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// CacheConfig configures the authorization decision cache.
type CacheConfig struct {
	backend    CacheBackend
	redisURL   string
	ttl        time.Duration
	maxEntries int
}

// NewCacheConfig creates a new CacheConfig with defaults.
func NewCacheConfig() CacheConfig {
	return CacheConfig{
		backend:    CacheBackendMemory,
		ttl:        DefaultCacheTTL,
		maxEntries: DefaultCacheMaxEntries,
	}
}

// Backend returns the cache backend.
func (c CacheConfig) Backend() CacheBackend { return c.backend }

// RedisURL returns the redis connection URL.
func (c CacheConfig) RedisURL() string { return c.redisURL }

// TTL returns how long cached decisions stay valid.
func (c CacheConfig) TTL() time.Duration { return c.ttl }

// MaxEntries returns the entry cap for the in-memory backend.
func (c CacheConfig) MaxEntries() int { return c.maxEntries }

// IsRedis returns true when the redis backend is fully configured.
func (c CacheConfig) IsRedis() bool {
	return c.backend == CacheBackendRedis && c.redisURL != ""
}

// WithBackend returns a new config with the specified backend.
func (c CacheConfig) WithBackend(backend CacheBackend) CacheConfig {
	c.backend = backend
	return c
}

// WithRedisURL returns a new config with the specified redis URL.
func (c CacheConfig) WithRedisURL(url string) CacheConfig {
	c.redisURL = url
	return c
}

// WithTTL returns a new config with the specified TTL.
func (c CacheConfig) WithTTL(d time.Duration) CacheConfig {
	c.ttl = d
	return c
}

// WithMaxEntries returns a new config with the specified entry cap.
func (c CacheConfig) WithMaxEntries(n int) CacheConfig {
	c.maxEntries = n
	return c
}

// SchedulerConfig configures the workflow trigger scheduler.
type SchedulerConfig struct {
	enabled  bool
	schedule string
}

// NewSchedulerConfig creates a new SchedulerConfig with defaults.
func NewSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		enabled:  true,
		schedule: DefaultSchedulerSpec,
	}
}

// Enabled returns whether the scheduler is enabled.
func (s SchedulerConfig) Enabled() bool { return s.enabled }

// Schedule returns the cron schedule expression for trigger scans.
func (s SchedulerConfig) Schedule() string { return s.schedule }

// WithEnabled returns a new config with the specified enabled state.
func (s SchedulerConfig) WithEnabled(enabled bool) SchedulerConfig {
	s.enabled = enabled
	return s
}

// WithSchedule returns a new config with the specified cron expression.
func (s SchedulerConfig) WithSchedule(schedule string) SchedulerConfig {
	s.schedule = schedule
	return s
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host          string
	port          int
	dataDir       string
	dbURL         string
	logLevel      string
	logFormat     LogFormat
	apiKeys       []string
	adminUsername string
	cache         CacheConfig
	scheduler     SchedulerConfig
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".doclink"
	}
	return filepath.Join(home, ".doclink")
}

// DefaultVersionDir returns the default version content directory for a
// given data directory.
func DefaultVersionDir(dataDir string) string {
	return filepath.Join(dataDir, DefaultVersionSubdir)
}

// DefaultLogger returns the default slog logger for library consumers.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// PrepareVersionDir resolves the version content directory (defaulting if
// empty) and creates it.
func PrepareVersionDir(versionDir, dataDir string) (string, error) {
	if versionDir == "" {
		versionDir = DefaultVersionDir(dataDir)
	}
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return "", fmt.Errorf("create version directory: %w", err)
	}
	return versionDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:          DefaultHost,
		port:          DefaultPort,
		dataDir:       dataDir,
		dbURL:         "sqlite:///" + filepath.Join(dataDir, "doclink.db"),
		logLevel:      DefaultLogLevel,
		logFormat:     LogFormatPretty,
		apiKeys:       []string{},
		adminUsername: DefaultAdminUsername,
		cache:         NewCacheConfig(),
		scheduler:     NewSchedulerConfig(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// APIKeys returns the configured API keys.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// AdminUsername returns the username bootstrapped as superuser on startup.
func (c AppConfig) AdminUsername() string { return c.adminUsername }

// Cache returns the cache config.
func (c AppConfig) Cache() CacheConfig { return c.cache }

// Scheduler returns the scheduler config.
func (c AppConfig) Scheduler() SchedulerConfig { return c.scheduler }

// VersionDir returns the version content directory path.
func (c AppConfig) VersionDir() string {
	return filepath.Join(c.dataDir, DefaultVersionSubdir)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// EnsureVersionDir creates the version content directory if it doesn't exist.
func (c AppConfig) EnsureVersionDir() error {
	return os.MkdirAll(c.VersionDir(), 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
		// Update default DB URL when data dir changes
		if c.dbURL == "" || strings.Contains(c.dbURL, "doclink.db") {
			c.dbURL = "sqlite:///" + filepath.Join(dir, "doclink.db")
		}
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithAPIKeys sets the API keys.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = make([]string, len(keys))
		copy(c.apiKeys, keys)
	}
}

// WithAdminUsername sets the bootstrap superuser username.
func WithAdminUsername(username string) AppConfigOption {
	return func(c *AppConfig) {
		if username != "" {
			c.adminUsername = username
		}
	}
}

// WithCacheConfig sets the cache config.
func WithCacheConfig(cache CacheConfig) AppConfigOption {
	return func(c *AppConfig) { c.cache = cache }
}

// WithSchedulerConfig sets the scheduler config.
func WithSchedulerConfig(s SchedulerConfig) AppConfigOption {
	return func(c *AppConfig) { c.scheduler = s }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
// This copies all fields from the receiver and then applies the options,
// making it safe to use when adding new fields to AppConfig.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Sensitive values like API keys are masked or shown as counts.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("version_dir", c.VersionDir()),
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.Int("api_keys_count", len(c.apiKeys)),
		slog.String("admin_username", c.adminUsername),
		slog.String("cache_backend", string(c.cache.Backend())),
		slog.Duration("cache_ttl", c.cache.TTL()),
		slog.Bool("scheduler_enabled", c.scheduler.Enabled()),
		slog.String("scheduler_schedule", c.scheduler.Schedule()),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if len(c.dbURL) >= 7 && c.dbURL[:7] == "sqlite:" {
		return c.dbURL
	}
	return "postgres://***@***"
}

// ParseAPIKeys parses a comma-separated string of API keys.
func ParseAPIKeys(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
