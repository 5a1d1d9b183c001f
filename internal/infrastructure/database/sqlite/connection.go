package sqlite

import (
	"fmt"
	"log"
	"os"
	"strings"

	"organizer/internal/domain/entity"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens the GORM connection to the SQLite database at dbURL and
// migrates the schema. Use ":memory:" for a throwaway database.
func NewDB(dbURL, logLevel string) (*gorm.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database url must not be empty")
	}

	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             0,
			LogLevel:                  parseLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dbURL), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", dbURL, err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate automatically migrates the database schema for the defined entities.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.KVEntry{},
		&entity.ScheduledNotification{},
	)
	if err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}

// CloseDB closes the database connection if it's open.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func parseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
