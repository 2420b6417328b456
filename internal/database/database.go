// Package database is the SQLite implementation of the booking store, used
// for local and offline deployments and as the integration test backend.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"equipbook/internal/domain"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the goose files.
const MigrationsDir = "migrations"

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// NewDB opens (creating if needed) the database at path and migrates it to
// the latest schema. ":memory:" gives a private in-memory database.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if !isMemory(path) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := Open(path)
	if err != nil {
		return nil, err
	}

	if err := Migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return &DB{DB: sqlDB, logger: logger}, nil
}

// Open connects without migrating.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if !isMemory(path) {
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite serialises writers anyway and an in-memory
	// database only exists on the connection that created it.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return sqlDB, nil
}

// Migrate applies every pending embedded migration.
func Migrate(sqlDB *sql.DB) error {
	goose.SetBaseFS(Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return domain.Upstream("ping database", err)
	}
	return nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}
