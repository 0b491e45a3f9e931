package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/smith3v/lexilogio/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultSlowThreshold = 200 * time.Millisecond
	defaultGormLogLevel  = gormlogger.Warn
)

// gormSlogLogger routes GORM output into the application logger. Plain query
// traces are debug noise for an interactive tool, so gorm's info level maps to
// slog debug.
type gormSlogLogger struct {
	slowThreshold             time.Duration
	ignoreRecordNotFoundError bool
	logLevel                  gormlogger.LogLevel
}

func newGormLogger(levelValue string) (gormlogger.Interface, error) {
	level := defaultGormLogLevel
	var levelErr error
	if strings.TrimSpace(levelValue) != "" {
		level, levelErr = parseGormLogLevel(levelValue)
	}
	return &gormSlogLogger{
		slowThreshold:             defaultSlowThreshold,
		ignoreRecordNotFoundError: true,
		logLevel:                  level,
	}, levelErr
}

func (l *gormSlogLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

func (l *gormSlogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.emit(ctx, gormlogger.Info, fmt.Sprintf(msg, data...))
}

func (l *gormSlogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.emit(ctx, gormlogger.Warn, fmt.Sprintf(msg, data...))
}

func (l *gormSlogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.emit(ctx, gormlogger.Error, fmt.Sprintf(msg, data...))
}

func (l *gormSlogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel == gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil:
		if l.ignoreRecordNotFoundError && errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}
		l.emit(ctx, gormlogger.Error, "gorm query error", "elapsed", elapsed, "rows", rows, "sql", sql, "error", err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		l.emit(ctx, gormlogger.Warn, "gorm slow query", "elapsed", elapsed, "rows", rows, "sql", sql, "threshold", l.slowThreshold)
	default:
		l.emit(ctx, gormlogger.Info, "gorm query", "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}

func (l *gormSlogLogger) emit(ctx context.Context, level gormlogger.LogLevel, msg string, args ...any) {
	appLevel, slogLevel, ok := mapGormLevel(level)
	if !ok || l.logLevel == gormlogger.Silent || l.logLevel < level || !logger.Enabled(appLevel) {
		return
	}
	logger.Logger.Log(ctx, slogLevel, msg, args...)
}

func mapGormLevel(level gormlogger.LogLevel) (logger.LogLevel, slog.Level, bool) {
	switch level {
	case gormlogger.Info:
		return logger.DEBUG, slog.LevelDebug, true
	case gormlogger.Warn:
		return logger.WARN, slog.LevelWarn, true
	case gormlogger.Error:
		return logger.ERROR, slog.LevelError, true
	default:
		return logger.ERROR, slog.LevelError, false
	}
}

func parseGormLogLevel(value string) (gormlogger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "silent":
		return gormlogger.Silent, nil
	case "error":
		return gormlogger.Error, nil
	case "warn":
		return gormlogger.Warn, nil
	case "info":
		return gormlogger.Info, nil
	default:
		return defaultGormLogLevel, fmt.Errorf("invalid gorm log level %q", value)
	}
}
