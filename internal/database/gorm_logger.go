package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slogGormLogger bridges GORM's logger.Interface onto the process slog
// default. SQL statements surface at debug level, and statement formatting
// is skipped entirely when debug is disabled.
type slogGormLogger struct{}

// LogMode is a no-op; slog's configured level does the filtering.
func (l slogGormLogger) LogMode(logger.LogLevel) logger.Interface { return l }

func (l slogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	slog.Default().LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf(msg, args...))
}

func (l slogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	slog.Default().LogAttrs(ctx, slog.LevelWarn, fmt.Sprintf(msg, args...))
}

func (l slogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	slog.Default().LogAttrs(ctx, slog.LevelError, fmt.Sprintf(msg, args...))
}

// sqlLogLimit caps SQL text in log lines. Longer statements keep their head
// and tail with the middle elided.
const sqlLogLimit = 200

func elideSQL(sql string) string {
	if len(sql) <= sqlLogLimit {
		return sql
	}
	half := (sqlLogLimit - 3) / 2
	return sql[:half] + "..." + sql[len(sql)-half:]
}

// Trace runs after every SQL operation. gorm.ErrRecordNotFound is the
// ordinary empty result of First and logs like a success; other errors log
// at error level with the statement attached.
func (l slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		slog.Default().LogAttrs(ctx, slog.LevelError, "query failed",
			slog.String("sql", elideSQL(sql)),
			slog.Int64("rows", rows),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
	case slog.Default().Enabled(ctx, slog.LevelDebug):
		sql, rows := fc()
		slog.Default().LogAttrs(ctx, slog.LevelDebug, "query",
			slog.String("sql", elideSQL(sql)),
			slog.Int64("rows", rows),
			slog.Duration("duration", elapsed),
		)
	}
}
