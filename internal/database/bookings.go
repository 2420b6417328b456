package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"equipbook/internal/domain"
	"equipbook/internal/models"

	"github.com/google/uuid"
)

const calendarColumns = `
        b.id, b.start_date, b.end_date, b.note,
        p.id, p.full_name, p.initials, p.color, p.location`

func (db *DB) CalendarBookings(ctx context.Context, equipmentID string, month models.DateRange) ([]models.CalendarBooking, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT`+calendarColumns+`
        FROM bookings b
        LEFT JOIN people p ON p.id = b.person_id
        WHERE b.equipment_id = ? AND b.start_date <= ? AND b.end_date >= ?
        ORDER BY b.start_date ASC`,
		equipmentID, month.End, month.Start)
	if err != nil {
		return nil, domain.Upstream("query calendar bookings", err)
	}
	defer rows.Close()

	var out []models.CalendarBooking
	for rows.Next() {
		b, err := scanCalendarBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Upstream("iterate calendar bookings", err)
	}
	return out, nil
}

func (db *DB) MatrixBookings(ctx context.Context, month models.DateRange) ([]models.MatrixBooking, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT b.id, b.start_date, b.end_date,
               e.id, e.name,
               p.id, p.initials, p.color
        FROM bookings b
        LEFT JOIN equipment e ON e.id = b.equipment_id
        LEFT JOIN people p ON p.id = b.person_id
        WHERE b.start_date <= ? AND b.end_date >= ?
        ORDER BY b.start_date ASC`,
		month.End, month.Start)
	if err != nil {
		return nil, domain.Upstream("query matrix bookings", err)
	}
	defer rows.Close()

	var out []models.MatrixBooking
	for rows.Next() {
		var (
			b                  models.MatrixBooking
			eqID, eqName       sql.NullString
			pID, pInit, pColor sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.StartDate, &b.EndDate, &eqID, &eqName, &pID, &pInit, &pColor); err != nil {
			return nil, domain.Upstream("scan matrix booking", err)
		}
		if eqID.Valid {
			b.Equipment = &models.EquipmentRef{ID: eqID.String, Name: eqName.String}
		}
		if pID.Valid {
			b.Person = &models.PersonRef{ID: pID.String, Initials: pInit.String, Color: pColor.String}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Upstream("iterate matrix bookings", err)
	}
	return out, nil
}

func (db *DB) ReportRows(ctx context.Context, r models.DateRange) ([]models.ReportRow, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT b.id, b.start_date, b.end_date, b.note,
               COALESCE(p.full_name, ''),
               b.equipment_id,
               COALESCE(e.name, ''),
               COALESCE(e.asset_number, '')
        FROM bookings b
        LEFT JOIN equipment e ON e.id = b.equipment_id
        LEFT JOIN people p ON p.id = b.person_id
        WHERE b.start_date <= ? AND b.end_date >= ?
        ORDER BY COALESCE(e.asset_number, '') ASC, b.start_date ASC`,
		r.End, r.Start)
	if err != nil {
		return nil, domain.Upstream("query report rows", err)
	}
	defer rows.Close()

	var out []models.ReportRow
	for rows.Next() {
		var row models.ReportRow
		if err := rows.Scan(&row.ID, &row.StartDate, &row.EndDate, &row.Note,
			&row.PersonName, &row.EquipmentID, &row.EquipmentName, &row.AssetNumber); err != nil {
			return nil, domain.Upstream("scan report row", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Upstream("iterate report rows", err)
	}
	return out, nil
}

func (db *DB) CountOverlapping(ctx context.Context, equipmentID string, r models.DateRange, excludeID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `
        SELECT COUNT(*)
        FROM bookings
        WHERE equipment_id = ? AND id != ? AND start_date <= ? AND end_date >= ?`,
		equipmentID, excludeID, r.End, r.Start).Scan(&n)
	if err != nil {
		return 0, domain.Upstream("count overlapping bookings", err)
	}
	return n, nil
}

func (db *DB) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	var b models.Booking
	err := db.QueryRowContext(ctx, `
        SELECT id, equipment_id, person_id, start_date, end_date, note
        FROM bookings WHERE id = ?`, bookingID).
		Scan(&b.ID, &b.EquipmentID, &b.PersonID, &b.StartDate, &b.EndDate, &b.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", bookingID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.Upstream("query booking", err)
	}
	return &b, nil
}

func (db *DB) DocumentType(ctx context.Context, id string) (string, error) {
	var docType string
	err := db.QueryRowContext(ctx, `
        SELECT 'booking' FROM bookings WHERE id = ?1
        UNION ALL SELECT 'person' FROM people WHERE id = ?1
        UNION ALL SELECT 'equipment' FROM equipment WHERE id = ?1
        LIMIT 1`, id).Scan(&docType)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", domain.Upstream("query document type", err)
	}
	return docType, nil
}

func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) (string, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx, `
        INSERT INTO bookings (id, equipment_id, person_id, start_date, end_date, note)
        VALUES (?, ?, ?, ?, ?, ?)`,
		id, b.EquipmentID, b.PersonID, b.StartDate, b.EndDate, b.Note)
	if err != nil {
		return "", domain.Upstream("insert booking", err)
	}
	return id, nil
}

func (db *DB) PatchBooking(ctx context.Context, id string, patch models.BookingPatch) error {
	var (
		res sql.Result
		err error
	)
	if patch.Note != nil {
		res, err = db.ExecContext(ctx, `
            UPDATE bookings SET start_date = ?, end_date = ?, note = ?, updated_at = CURRENT_TIMESTAMP
            WHERE id = ?`, patch.StartDate, patch.EndDate, *patch.Note, id)
	} else {
		res, err = db.ExecContext(ctx, `
            UPDATE bookings SET start_date = ?, end_date = ?, updated_at = CURRENT_TIMESTAMP
            WHERE id = ?`, patch.StartDate, patch.EndDate, id)
	}
	if err != nil {
		return domain.Upstream("update booking", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteDocument removes a booking by id; deleting a missing row is not an error.
func (db *DB) DeleteDocument(ctx context.Context, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id); err != nil {
		return domain.Upstream("delete booking", err)
	}
	return nil
}

// DeleteBookingByQuery is the fallback path; with a single table it is the
// same statement as DeleteDocument.
func (db *DB) DeleteBookingByQuery(ctx context.Context, id string) error {
	return db.DeleteDocument(ctx, id)
}

func (db *DB) CurrentBooking(ctx context.Context, equipmentID, day string) (*models.CalendarBooking, error) {
	return db.summaryBooking(ctx, `b.start_date <= ?2 AND b.end_date >= ?2`, `b.start_date ASC`, equipmentID, day)
}

func (db *DB) LastBookingBefore(ctx context.Context, equipmentID, day string) (*models.CalendarBooking, error) {
	return db.summaryBooking(ctx, `b.end_date < ?2`, `b.end_date DESC`, equipmentID, day)
}

func (db *DB) NextBookingAfter(ctx context.Context, equipmentID, day string) (*models.CalendarBooking, error) {
	return db.summaryBooking(ctx, `b.start_date > ?2`, `b.start_date ASC`, equipmentID, day)
}

// summaryBooking returns the first booking of equipmentID (?1) matching
// cond against day (?2) in the given order, or nil.
func (db *DB) summaryBooking(ctx context.Context, cond, order, equipmentID, day string) (*models.CalendarBooking, error) {
	row := db.QueryRowContext(ctx, `
        SELECT`+calendarColumns+`
        FROM bookings b
        LEFT JOIN people p ON p.id = b.person_id
        WHERE b.equipment_id = ?1 AND `+cond+`
        ORDER BY `+order+`
        LIMIT 1`, equipmentID, day)

	b, err := scanCalendarBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCalendarBooking(s scanner) (*models.CalendarBooking, error) {
	var (
		b                                    models.CalendarBooking
		pID, pName, pInit, pColor, pLocation sql.NullString
	)
	err := s.Scan(&b.ID, &b.StartDate, &b.EndDate, &b.Note, &pID, &pName, &pInit, &pColor, &pLocation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, domain.Upstream("scan booking", err)
	}
	if pID.Valid {
		b.Person = &models.PersonRef{
			ID:       pID.String,
			FullName: pName.String,
			Initials: pInit.String,
			Color:    pColor.String,
			Location: pLocation.String,
		}
	}
	return &b, nil
}
