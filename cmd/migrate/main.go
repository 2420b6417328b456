// Command migrate manages the SQLite schema and loads the people and
// equipment directory from a YAML seed file.
//
//	migrate [-db path] up|down|status|version
//	migrate [-db path] [-seed file] seed
//	migrate [-db path] [-backup-dir dir] [-keep-days n] backup
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"equipbook/internal/database"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", "./data/equipbook.db", "path to sqlite db")
	seedPath := fs.String("seed", "configs/seed.yaml", "path to seed yaml")
	backupDir := fs.String("backup-dir", "./data/backups", "directory for backup files")
	keepDays := fs.Int("keep-days", 30, "delete backups older than this many days, 0 keeps all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one command: up, down, status, version, seed or backup")
	}
	command := fs.Arg(0)

	switch command {
	case "seed":
		return seed(*dbPath, *seedPath, &logger)
	case "backup":
		return backup(*dbPath, *backupDir, *keepDays, &logger)
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	sqlDB, err := database.Open(*dbPath)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return migrate(sqlDB, command, &logger)
}

func migrate(sqlDB *sql.DB, command string, logger *zerolog.Logger) error {
	goose.SetBaseFS(database.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	var err error
	switch command {
	case "up":
		err = goose.Up(sqlDB, database.MigrationsDir)
	case "down":
		err = goose.Down(sqlDB, database.MigrationsDir)
	case "status":
		err = goose.Status(sqlDB, database.MigrationsDir)
	case "version":
		var v int64
		v, err = goose.GetDBVersion(sqlDB)
		if err == nil {
			logger.Info().Int64("version", v).Msg("schema version")
		}
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	return nil
}

func seed(dbPath, seedPath string, logger *zerolog.Logger) error {
	data, err := os.ReadFile(seedPath)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	file, err := parseSeed(data)
	if err != nil {
		return err
	}

	db, err := database.NewDB(dbPath, logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	people, equipment, err := apply(ctx, db, file)
	if err != nil {
		return err
	}
	logger.Info().Int("people", people).Int("equipment", equipment).Msg("seed applied")
	return nil
}

func backup(dbPath, dir string, keepDays int, logger *zerolog.Logger) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("database %s: %w", dbPath, err)
	}

	db, err := database.NewDB(dbPath, logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	if _, err := db.Backup(ctx, dir, now); err != nil {
		return err
	}

	removed, err := database.PruneBackups(dir, keepDays, now)
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Info().Int("removed", removed).Msg("old backups pruned")
	}
	return nil
}
