package main

import (
	"log/slog"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/internal/config"
)

// clientOptions builds the doclink client options shared by the serve and
// seed commands: storage backend, data directory, bootstrap admin account,
// decision cache and trigger scheduler.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) []doclink.Option {
	opts := []doclink.Option{
		doclink.WithDataDir(cfg.DataDir()),
		doclink.WithLogger(logger),
		doclink.WithAdminUsername(cfg.AdminUsername()),
		doclink.WithCacheConfig(cfg.Cache()),
		doclink.WithSchedulerConfig(cfg.Scheduler()),
	}

	// Configure storage based on database URL
	dbURLStr := cfg.DBURL()
	if dbURLStr != "" && !isSQLite(dbURLStr) {
		// Anything that is not a sqlite URL is treated as PostgreSQL
		opts = append(opts, doclink.WithPostgres(dbURLStr))
	} else {
		// Default to SQLite
		dbPath := cfg.DataDir() + "/doclink.db"
		if dbURLStr != "" && isSQLite(dbURLStr) {
			// Extract path from sqlite URL
			dbPath = dbURLStr[10:] // Remove "sqlite:///" prefix
		}
		opts = append(opts, doclink.WithSQLite(dbPath))
	}

	return opts
}

// isSQLite checks if the database URL is for SQLite.
func isSQLite(url string) bool {
	return len(url) >= 7 && url[:7] == "sqlite:"
}
