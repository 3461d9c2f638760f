// Package sqlstore is the self-hosted relational store, backed by GORM on
// Postgres or SQLite.
package sqlstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"question-bank/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// logWriter routes GORM's slow-query and error output into the app logger.
type logWriter struct {
	logger domain.Logger
}

func (w logWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}

// Open connects to the database and migrates the schema.
func Open(driver, dsn string, logger domain.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite, "":
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gormLog := gormLogger.New(
		logWriter{logger: logger},
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("Database ready", "driver", driver)
	return db, nil
}

func ensureSQLiteDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, ":memory:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// Repositories bundles the GORM-backed repositories.
type Repositories struct {
	Documents     domain.DocumentRepository
	Topics        domain.TopicRepository
	Questions     domain.QuestionRepository
	Jobs          domain.JobRepository
	GeneratedPDFs domain.GeneratedPDFRepository
}

// NewRepositories builds every repository on one connection.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Documents:     &DocumentRepository{db: db},
		Topics:        &TopicRepository{db: db},
		Questions:     &QuestionRepository{db: db},
		Jobs:          &JobRepository{db: db},
		GeneratedPDFs: &GeneratedPDFRepository{db: db},
	}
}
