package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const backupPrefix = "equipbook_"

// Backup writes a consistent copy of the open database into dir and returns
// its path. VACUUM INTO is safe while the API is serving writes.
func (db *DB) Backup(ctx context.Context, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s%s.db", backupPrefix, now.UTC().Format("20060102_150405")))
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("backup %s already exists", path)
	}

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}

	db.logger.Info().Str("path", path).Msg("Backup completed")
	return path, nil
}

// PruneBackups removes backups in dir older than retentionDays and returns
// how many were deleted. Other files are left alone.
func PruneBackups(dir string, retentionDays int, now time.Time) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup directory: %w", err)
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || filepath.Ext(name) != ".db" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return removed, fmt.Errorf("failed to remove %s: %w", name, err)
			}
			removed++
		}
	}
	return removed, nil
}
