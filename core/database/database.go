package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the embedded SQLite database backing the persistent
// metadata cache. The parent directory is created if missing. Use the
// special path ":memory:" for an ephemeral database in tests.
func Connect(cfg Config) (*gorm.DB, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	// Suppress GORM logging; cache read failures are reported through
	// the cache counters and the application logger instead.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// A single writer with concurrent readers is the expected load.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
