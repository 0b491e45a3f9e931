// pkg/db/repository.go
package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smith3v/lexilogio/pkg/config"
	"github.com/smith3v/lexilogio/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Models lists every table owned by a deck database.
func Models() []interface{} {
	return []interface{}{&Category{}, &Tag{}, &Term{}, &Preferences{}}
}

// FileNameForDeck returns the sqlite file name used for a deck.
func FileNameForDeck(deck string) string {
	name := strings.Join(strings.Fields(deck), "_")
	if name == "" {
		name = config.DefaultDeck
	}
	return "lexilogio_" + name + ".db"
}

// Open connects to the deck database described by cfg and migrates it.
func Open(cfg config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormLogger, gormErr := newGormLogger(cfg.Logging.GormLevel)
	if gormErr != nil {
		logger.Error("invalid gorm log level", "value", cfg.Logging.GormLevel, "error", gormErr)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		logger.Error("failed to connect to database", "driver", cfg.Database.Driver, "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(gdb); err != nil {
		logger.Error("failed to auto-migrate database", "error", err)
		return nil, err
	}
	return gdb, nil
}

func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the connection pool behind gdb.
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.Database.Driver {
	case "", "sqlite":
		path := cfg.Database.Path
		if path == "" {
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir %s: %w", cfg.DataDir, err)
			}
			path = filepath.Join(cfg.DataDir, FileNameForDeck(cfg.Deck))
		}
		logger.Debug("opening sqlite deck", "path", path)
		return sqlite.Open(path), nil
	case "postgres":
		dsn := "host=" + cfg.Database.Host +
			" user=" + cfg.Database.User +
			" password=" + cfg.Database.Password +
			" dbname=" + cfg.Database.DBName +
			" port=" + strconv.Itoa(cfg.Database.Port) +
			" sslmode=" + cfg.Database.SSLMode
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
