package doclink

import (
	"io"
	"log/slog"

	"github.com/pagekeep/doclink/internal/config"
)

// databaseType identifies the database.
type databaseType int

const (
	databaseUnset databaseType = iota
	databaseSQLite
	databasePostgres
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	database      databaseType
	dbPath        string
	dbDSN         string
	dataDir       string
	versionDir    string
	logger        *slog.Logger
	adminUsername string
	cache         config.CacheConfig
	scheduler     config.SchedulerConfig
	closers       []io.Closer
}

// newClientConfig creates a clientConfig carrying the defaults from
// internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:       config.DefaultDataDir(),
		adminUsername: config.DefaultAdminUsername,
		cache:         config.NewCacheConfig(),
		scheduler:     config.NewSchedulerConfig(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseSQLite
		c.dbPath = path
	}
}

// WithPostgres configures PostgreSQL as the database.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databasePostgres
		c.dbDSN = dsn
	}
}

// WithDataDir sets the data directory for the database and version content.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithVersionDir sets the directory where version content is stored.
// If not specified, defaults to {dataDir}/versions.
func WithVersionDir(dir string) Option {
	return func(c *clientConfig) {
		c.versionDir = dir
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithAdminUsername sets the username of the superuser account ensured at
// startup. Defaults to "admin".
func WithAdminUsername(name string) Option {
	return func(c *clientConfig) {
		if name != "" {
			c.adminUsername = name
		}
	}
}

// WithCacheConfig sets the access decision cache configuration.
func WithCacheConfig(cfg config.CacheConfig) Option {
	return func(c *clientConfig) {
		c.cache = cfg
	}
}

// WithSchedulerConfig sets the workflow trigger scheduler configuration.
func WithSchedulerConfig(cfg config.SchedulerConfig) Option {
	return func(c *clientConfig) {
		c.scheduler = cfg
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(c io.Closer) Option {
	return func(cfg *clientConfig) {
		cfg.closers = append(cfg.closers, c)
	}
}
