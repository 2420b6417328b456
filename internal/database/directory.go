package database

import (
	"context"
	"fmt"

	"equipbook/internal/domain"
	"equipbook/internal/models"
)

func (db *DB) ActivePeople(ctx context.Context) ([]models.Person, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT id, full_name, initials, color, location
        FROM people
        WHERE active = 1
        ORDER BY full_name ASC`)
	if err != nil {
		return nil, domain.Upstream("query people", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		p := models.Person{Active: true}
		if err := rows.Scan(&p.ID, &p.FullName, &p.Initials, &p.Color, &p.Location); err != nil {
			return nil, domain.Upstream("scan person", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Upstream("iterate people", err)
	}
	return people, nil
}

func (db *DB) ActiveEquipment(ctx context.Context) ([]models.Equipment, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT id, name, asset_number, serial_number, calibration_due_at
        FROM equipment
        WHERE active = 1
        ORDER BY name ASC`)
	if err != nil {
		return nil, domain.Upstream("query equipment", err)
	}
	defer rows.Close()

	var equipment []models.Equipment
	for rows.Next() {
		e := models.Equipment{Active: true}
		if err := rows.Scan(&e.ID, &e.Name, &e.AssetNumber, &e.SerialNumber, &e.CalibrationDueAt); err != nil {
			return nil, domain.Upstream("scan equipment", err)
		}
		equipment = append(equipment, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Upstream("iterate equipment", err)
	}
	return equipment, nil
}

// UpsertPerson inserts or replaces a person, keyed by id.
func (db *DB) UpsertPerson(ctx context.Context, p models.Person) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO people (id, full_name, initials, color, location, active, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(id) DO UPDATE SET
            full_name = excluded.full_name,
            initials = excluded.initials,
            color = excluded.color,
            location = excluded.location,
            active = excluded.active,
            updated_at = CURRENT_TIMESTAMP`,
		p.ID, p.FullName, p.Initials, p.Color, p.Location, p.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert person %s: %w", p.ID, err)
	}
	return nil
}

// UpsertEquipment inserts or replaces an equipment record, keyed by id.
func (db *DB) UpsertEquipment(ctx context.Context, e models.Equipment) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO equipment (id, name, asset_number, serial_number, calibration_due_at, active, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            asset_number = excluded.asset_number,
            serial_number = excluded.serial_number,
            calibration_due_at = excluded.calibration_due_at,
            active = excluded.active,
            updated_at = CURRENT_TIMESTAMP`,
		e.ID, e.Name, e.AssetNumber, e.SerialNumber, e.CalibrationDueAt, e.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert equipment %s: %w", e.ID, err)
	}
	return nil
}
