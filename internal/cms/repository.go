package cms

import (
	"context"
	"fmt"

	"equipbook/internal/domain"
	"equipbook/internal/models"

	"github.com/rs/zerolog"
)

// Repository implements domain.Repository on top of the content store.
type Repository struct {
	client *Client
	logger *zerolog.Logger
}

func NewRepository(client *Client, logger *zerolog.Logger) *Repository {
	return &Repository{client: client, logger: logger}
}

func (r *Repository) ActivePeople(ctx context.Context) ([]models.Person, error) {
	var people []models.Person
	if err := r.client.Fetch(ctx, qActivePeople, nil, &people); err != nil {
		return nil, fmt.Errorf("fetch people: %w", err)
	}
	for i := range people {
		people[i].Active = true
	}
	return people, nil
}

func (r *Repository) ActiveEquipment(ctx context.Context) ([]models.Equipment, error) {
	var equipment []models.Equipment
	if err := r.client.Fetch(ctx, qActiveEquipment, nil, &equipment); err != nil {
		return nil, fmt.Errorf("fetch equipment: %w", err)
	}
	for i := range equipment {
		equipment[i].Active = true
	}
	return equipment, nil
}

func (r *Repository) CalendarBookings(ctx context.Context, equipmentID string, month models.DateRange) ([]models.CalendarBooking, error) {
	var rows []models.CalendarBooking
	params := map[string]interface{}{"eqId": equipmentID, "monthStart": month.Start, "monthEnd": month.End}
	if err := r.client.Fetch(ctx, qCalendarBookings, params, &rows); err != nil {
		return nil, fmt.Errorf("fetch calendar bookings: %w", err)
	}

	valid := rows[:0]
	for _, b := range rows {
		if r.wellFormed(b.ID, b.StartDate, b.EndDate) {
			valid = append(valid, b)
		}
	}
	return valid, nil
}

func (r *Repository) MatrixBookings(ctx context.Context, month models.DateRange) ([]models.MatrixBooking, error) {
	var rows []models.MatrixBooking
	params := map[string]interface{}{"monthStart": month.Start, "monthEnd": month.End}
	if err := r.client.Fetch(ctx, qMatrixBookings, params, &rows); err != nil {
		return nil, fmt.Errorf("fetch matrix bookings: %w", err)
	}

	valid := rows[:0]
	for _, b := range rows {
		if r.wellFormed(b.ID, b.StartDate, b.EndDate) {
			valid = append(valid, b)
		}
	}
	return valid, nil
}

func (r *Repository) ReportRows(ctx context.Context, rng models.DateRange) ([]models.ReportRow, error) {
	var rows []models.ReportRow
	params := map[string]interface{}{"start": rng.Start, "end": rng.End}
	if err := r.client.Fetch(ctx, qReportRows, params, &rows); err != nil {
		return nil, fmt.Errorf("fetch report rows: %w", err)
	}

	valid := rows[:0]
	for _, row := range rows {
		if r.wellFormed(row.ID, row.StartDate, row.EndDate) {
			valid = append(valid, row)
		}
	}
	return valid, nil
}

func (r *Repository) CountOverlapping(ctx context.Context, equipmentID string, rng models.DateRange, excludeID string) (int, error) {
	var n int
	params := map[string]interface{}{"eqId": equipmentID, "start": rng.Start, "end": rng.End, "excludeId": excludeID}
	if err := r.client.Fetch(ctx, qCountOverlapping, params, &n); err != nil {
		return 0, fmt.Errorf("count overlapping bookings: %w", err)
	}
	return n, nil
}

func (r *Repository) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	var b *models.Booking
	if err := r.client.Fetch(ctx, qGetBooking, map[string]interface{}{"id": bookingID}, &b); err != nil {
		return nil, fmt.Errorf("fetch booking: %w", err)
	}
	if b == nil || b.EquipmentID == "" {
		return nil, fmt.Errorf("booking %s: %w", bookingID, domain.ErrNotFound)
	}
	return b, nil
}

func (r *Repository) DocumentType(ctx context.Context, id string) (string, error) {
	var docType string
	if err := r.client.Fetch(ctx, qDocumentType, map[string]interface{}{"id": id}, &docType); err != nil {
		return "", fmt.Errorf("fetch document type: %w", err)
	}
	return docType, nil
}

func (r *Repository) CreateBooking(ctx context.Context, b *models.Booking) (string, error) {
	doc := map[string]interface{}{
		"_type":     models.DocTypeBooking,
		"equipment": reference(b.EquipmentID),
		"person":    reference(b.PersonID),
		"startDate": b.StartDate,
		"endDate":   b.EndDate,
	}
	if b.Note != "" {
		doc["note"] = b.Note
	}
	id, err := r.client.Create(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("create booking: %w", err)
	}
	return id, nil
}

func (r *Repository) PatchBooking(ctx context.Context, id string, patch models.BookingPatch) error {
	set := map[string]interface{}{
		"startDate": patch.StartDate,
		"endDate":   patch.EndDate,
	}
	if patch.Note != nil {
		set["note"] = *patch.Note
	}
	if err := r.client.Patch(ctx, id, set); err != nil {
		return fmt.Errorf("patch booking %s: %w", id, err)
	}
	return nil
}

func (r *Repository) DeleteDocument(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func (r *Repository) DeleteBookingByQuery(ctx context.Context, id string) error {
	if err := r.client.DeleteByQuery(ctx, qDeleteBooking, map[string]interface{}{"id": id}); err != nil {
		return fmt.Errorf("delete booking %s by query: %w", id, err)
	}
	return nil
}

func (r *Repository) CurrentBooking(ctx context.Context, equipmentID, day string) (*models.CalendarBooking, error) {
	return r.fetchOne(ctx, qCurrentBooking, equipmentID, day)
}

func (r *Repository) LastBookingBefore(ctx context.Context, equipmentID, day string) (*models.CalendarBooking, error) {
	return r.fetchOne(ctx, qLastBooking, equipmentID, day)
}

func (r *Repository) NextBookingAfter(ctx context.Context, equipmentID, day string) (*models.CalendarBooking, error) {
	return r.fetchOne(ctx, qNextBooking, equipmentID, day)
}

func (r *Repository) Ping(ctx context.Context) error {
	var n int
	return r.client.Fetch(ctx, qPing, nil, &n)
}

func (r *Repository) fetchOne(ctx context.Context, query, equipmentID, day string) (*models.CalendarBooking, error) {
	var b *models.CalendarBooking
	params := map[string]interface{}{"eqId": equipmentID, "day": day}
	if err := r.client.Fetch(ctx, query, params, &b); err != nil {
		return nil, fmt.Errorf("fetch summary booking: %w", err)
	}
	if b != nil && !r.wellFormed(b.ID, b.StartDate, b.EndDate) {
		return nil, nil
	}
	return b, nil
}

// wellFormed drops rows the store returned with a missing id or dates
// outside YYYY-MM-DD; they cannot take part in overlap logic.
func (r *Repository) wellFormed(id, start, end string) bool {
	if id != "" && models.ValidDay(start) && models.ValidDay(end) {
		return true
	}
	r.logger.Warn().Str("id", id).Str("start", start).Str("end", end).Msg("Skipping malformed booking row")
	return false
}

func reference(id string) map[string]string {
	return map[string]string{"_type": "reference", "_ref": id}
}
