package db

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/smith3v/lexilogio/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	originalLogger := logger.Logger
	t.Cleanup(func() {
		logger.Logger = originalLogger
		logger.SetLogLevel(logger.INFO)
	})
	var buf bytes.Buffer
	logger.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &buf
}

func TestGormLoggerTraceLevels(t *testing.T) {
	buf := captureLogs(t)

	lg, err := newGormLogger("info")
	if err != nil {
		t.Fatalf("failed to create gorm logger: %v", err)
	}
	l := lg.(*gormSlogLogger)
	ctx := context.Background()

	logger.SetLogLevel(logger.DEBUG)
	l.slowThreshold = time.Nanosecond
	l.Trace(ctx, time.Now().Add(-time.Millisecond), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	if !strings.Contains(buf.String(), "gorm slow query") {
		t.Fatalf("expected slow query warning, got: %s", buf.String())
	}

	buf.Reset()
	l.slowThreshold = time.Hour
	l.Trace(ctx, time.Now().Add(-time.Millisecond), func() (string, int64) {
		return "SELECT 2", 1
	}, nil)
	if !strings.Contains(buf.String(), "level=DEBUG") || !strings.Contains(buf.String(), "SELECT 2") {
		t.Fatalf("expected debug query log, got: %s", buf.String())
	}

	buf.Reset()
	logger.SetLogLevel(logger.INFO)
	l.Trace(ctx, time.Now().Add(-time.Millisecond), func() (string, int64) {
		return "SELECT 3", 1
	}, nil)
	if buf.Len() != 0 {
		t.Fatalf("expected query trace to be filtered at INFO, got: %s", buf.String())
	}

	buf.Reset()
	logger.SetLogLevel(logger.ERROR)
	l.Trace(ctx, time.Now().Add(-time.Millisecond), func() (string, int64) {
		return "SELECT 4", 1
	}, errors.New("boom"))
	if !strings.Contains(buf.String(), "gorm query error") {
		t.Fatalf("expected error log, got: %s", buf.String())
	}
}

func TestGormLoggerIgnoresRecordNotFound(t *testing.T) {
	buf := captureLogs(t)

	lg, _ := newGormLogger("error")
	lg.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM terms WHERE id = 9", 0
	}, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("expected record-not-found to be ignored, got: %s", buf.String())
	}
}

func TestGormLoggerSilentMode(t *testing.T) {
	buf := captureLogs(t)

	lg, _ := newGormLogger("info")
	silent := lg.LogMode(gormlogger.Silent)
	silent.Error(context.Background(), "failed %s", "badly")
	silent.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, errors.New("boom"))
	if buf.Len() != 0 {
		t.Fatalf("expected silent logger to drop everything, got: %s", buf.String())
	}
	if lg.(*gormSlogLogger).logLevel != gormlogger.Info {
		t.Fatal("LogMode must not mutate the original logger")
	}
}

func TestNewGormLoggerDefaultsToWarn(t *testing.T) {
	lg, err := newGormLogger("")
	if err != nil {
		t.Fatalf("unexpected error for default gorm logger: %v", err)
	}
	l := lg.(*gormSlogLogger)
	if l.logLevel != gormlogger.Warn {
		t.Fatalf("expected default gorm log level warn, got: %v", l.logLevel)
	}
}

func TestNewGormLoggerInvalidLevelDefaultsToWarn(t *testing.T) {
	lg, err := newGormLogger("nope")
	if err == nil {
		t.Fatalf("expected error for invalid gorm level")
	}
	l := lg.(*gormSlogLogger)
	if l.logLevel != gormlogger.Warn {
		t.Fatalf("expected default gorm log level warn for invalid input, got: %v", l.logLevel)
	}
}
