package database

import (
	"context"
	"path/filepath"
	"testing"

	"equipbook/internal/models"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedDirectory(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.UpsertPerson(ctx, models.Person{ID: "p1", FullName: "Ada Byron", Initials: "AB", Color: "#1e3a8a", Location: "Lab 2", Active: true}))
	require.NoError(t, db.UpsertPerson(ctx, models.Person{ID: "p2", FullName: "Charles Babbage", Initials: "CB", Color: "#ffeb3b", Active: true}))
	require.NoError(t, db.UpsertPerson(ctx, models.Person{ID: "p3", FullName: "Retired", Initials: "RT", Active: false}))
	require.NoError(t, db.UpsertEquipment(ctx, models.Equipment{ID: "eq1", Name: "Oscilloscope", AssetNumber: "A-002", Active: true}))
	require.NoError(t, db.UpsertEquipment(ctx, models.Equipment{ID: "eq2", Name: "Analyser", AssetNumber: "A-001", Active: true}))
}

func TestNewDBDirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Migrate(db.DB))
	version, err := goose.GetDBVersion(db.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}

func TestDirectory(t *testing.T) {
	db := setupTestDB(t)
	seedDirectory(t, db)
	ctx := context.Background()

	people, err := db.ActivePeople(ctx)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Ada Byron", people[0].FullName)
	assert.Equal(t, "Lab 2", people[0].Location)

	// Upsert replaces in place.
	require.NoError(t, db.UpsertPerson(ctx, models.Person{ID: "p1", FullName: "Ada Lovelace", Initials: "AL", Active: true}))
	people, err = db.ActivePeople(ctx)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Ada Lovelace", people[0].FullName)

	equipment, err := db.ActiveEquipment(ctx)
	require.NoError(t, err)
	require.Len(t, equipment, 2)
	assert.Equal(t, "Analyser", equipment[0].Name)
}
