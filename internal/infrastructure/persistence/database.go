// Package persistence implements the client's durable local store on
// sqlite. It plays the role browser local storage plays in the web client:
// a small key-value surface that survives restarts.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ifconnect/client/internal/infrastructure/logger"
)

// Open opens (and if needed creates) the local sqlite database and migrates
// its schema. The parent directory is created for file-backed paths.
func Open(path string, zapLogger *zap.Logger) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create local store directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.NewGormLogger(zapLogger, gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}

	return db, nil
}
