package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"equipbook/internal/domain"
	"equipbook/internal/lock"
	"equipbook/internal/models"
	"equipbook/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insert(t *testing.T, db *DB, eq, person, start, end, note string) string {
	t.Helper()
	id, err := db.CreateBooking(context.Background(), &models.Booking{
		EquipmentID: eq, PersonID: person, StartDate: start, EndDate: end, Note: note,
	})
	require.NoError(t, err)
	return id
}

func TestCountOverlapping(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	existing := insert(t, db, "eq1", "p1", "2025-01-10", "2025-01-12", "")

	tests := []struct {
		name    string
		r       models.DateRange
		exclude string
		want    int
	}{
		{"shared boundary", models.DateRange{Start: "2025-01-12", End: "2025-01-14"}, "", 1},
		{"day after", models.DateRange{Start: "2025-01-13", End: "2025-01-14"}, "", 0},
		{"covering", models.DateRange{Start: "2025-01-01", End: "2025-01-31"}, "", 1},
		{"self excluded", models.DateRange{Start: "2025-01-11", End: "2025-01-13"}, existing, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := db.CountOverlapping(ctx, "eq1", tt.r, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}

	n, err := db.CountOverlapping(ctx, "eq2", models.DateRange{Start: "2025-01-10", End: "2025-01-12"}, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRangeQueries(t *testing.T) {
	db := setupTestDB(t)
	seedDirectory(t, db)
	ctx := context.Background()

	insert(t, db, "eq1", "p1", "2025-02-27", "2025-03-02", "spans month start")
	insert(t, db, "eq1", "p2", "2025-03-20", "2025-03-21", "")
	insert(t, db, "eq1", "p2", "2025-04-01", "2025-04-02", "outside")
	insert(t, db, "eq2", "p1", "2025-03-05", "2025-03-06", "other equipment")

	month := models.DateRange{Start: "2025-03-01", End: "2025-03-31"}

	cal, err := db.CalendarBookings(ctx, "eq1", month)
	require.NoError(t, err)
	require.Len(t, cal, 2)
	assert.Equal(t, "2025-02-27", cal[0].StartDate)
	assert.Equal(t, "spans month start", cal[0].Note)
	require.NotNil(t, cal[0].Person)
	assert.Equal(t, "AB", cal[0].Person.Initials)
	assert.Equal(t, "Lab 2", cal[0].Person.Location)

	matrix, err := db.MatrixBookings(ctx, month)
	require.NoError(t, err)
	require.Len(t, matrix, 3)
	for _, m := range matrix {
		require.NotNil(t, m.Equipment)
		require.NotNil(t, m.Person)
	}

	report, err := db.ReportRows(ctx, month)
	require.NoError(t, err)
	require.Len(t, report, 3)
	// A-001 (eq2) sorts before A-002 (eq1).
	assert.Equal(t, "A-001", report[0].AssetNumber)
	assert.Equal(t, "Analyser", report[0].EquipmentName)
	assert.Equal(t, "Ada Byron", report[0].PersonName)
	assert.Equal(t, "2025-02-27", report[1].StartDate)
	assert.Equal(t, "2025-03-20", report[2].StartDate)
}

func TestSummaryLookups(t *testing.T) {
	db := setupTestDB(t)
	seedDirectory(t, db)
	ctx := context.Background()

	insert(t, db, "eq1", "p1", "2025-03-01", "2025-03-02", "")
	insert(t, db, "eq1", "p2", "2025-03-04", "2025-03-05", "")
	cur := insert(t, db, "eq1", "p1", "2025-03-09", "2025-03-11", "now")
	insert(t, db, "eq1", "p2", "2025-03-20", "2025-03-21", "")
	insert(t, db, "eq1", "p1", "2025-03-15", "2025-03-16", "")

	got, err := db.CurrentBooking(ctx, "eq1", "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cur, got.ID)
	assert.Equal(t, "now", got.Note)

	last, err := db.LastBookingBefore(ctx, "eq1", "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "2025-03-04", last.StartDate)

	next, err := db.NextBookingAfter(ctx, "eq1", "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "2025-03-15", next.StartDate)

	none, err := db.CurrentBooking(ctx, "eq1", "2025-03-12")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMutations(t *testing.T) {
	db := setupTestDB(t)
	seedDirectory(t, db)
	ctx := context.Background()

	id := insert(t, db, "eq1", "p1", "2025-03-01", "2025-03-02", "keep me")

	stored, err := db.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.Booking{ID: id, EquipmentID: "eq1", PersonID: "p1", StartDate: "2025-03-01", EndDate: "2025-03-02", Note: "keep me"}, *stored)

	_, err = db.GetBooking(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, db.PatchBooking(ctx, id, models.BookingPatch{StartDate: "2025-03-03", EndDate: "2025-03-04"}))
	cal, err := db.CalendarBookings(ctx, "eq1", models.DateRange{Start: "2025-03-01", End: "2025-03-31"})
	require.NoError(t, err)
	require.Len(t, cal, 1)
	assert.Equal(t, "2025-03-03", cal[0].StartDate)
	assert.Equal(t, "keep me", cal[0].Note)

	empty := ""
	require.NoError(t, db.PatchBooking(ctx, id, models.BookingPatch{StartDate: "2025-03-03", EndDate: "2025-03-04", Note: &empty}))
	cal, err = db.CalendarBookings(ctx, "eq1", models.DateRange{Start: "2025-03-01", End: "2025-03-31"})
	require.NoError(t, err)
	assert.Empty(t, cal[0].Note)

	err = db.PatchBooking(ctx, "missing", models.BookingPatch{StartDate: "2025-03-03", EndDate: "2025-03-04"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	docType, err := db.DocumentType(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.DocTypeBooking, docType)
	docType, err = db.DocumentType(ctx, "eq1")
	require.NoError(t, err)
	assert.Equal(t, models.DocTypeEquipment, docType)
	docType, err = db.DocumentType(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, docType)

	require.NoError(t, db.DeleteDocument(ctx, id))
	require.NoError(t, db.DeleteBookingByQuery(ctx, id))
	docType, err = db.DocumentType(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, docType)
}

func newService(db *DB) *service.BookingService {
	logger := zerolog.Nop()
	return service.NewBookingService(db, lock.NewMemoryLocker(), 5*time.Second, nil, nil, &logger)
}

func TestBookingScenarios(t *testing.T) {
	db := setupTestDB(t)
	seedDirectory(t, db)
	svc := newService(db)
	ctx := context.Background()

	create := func(start, end string) (string, error) {
		return svc.Create(ctx, models.CreateBookingInput{EquipmentID: "eq1", PersonID: "p1", StartDate: start, EndDate: end})
	}

	t.Run("Boundary", func(t *testing.T) {
		_, err := create("2025-01-10", "2025-01-12")
		require.NoError(t, err)
		_, err = create("2025-01-12", "2025-01-14")
		assert.ErrorIs(t, err, domain.ErrConflict)
		_, err = create("2025-01-13", "2025-01-14")
		require.NoError(t, err)
	})

	t.Run("SharedDay", func(t *testing.T) {
		first, err := create("2025-03-01", "2025-03-03")
		require.NoError(t, err)
		_, err = create("2025-03-03", "2025-03-05")
		assert.ErrorIs(t, err, domain.ErrConflict)
		_, err = create("2025-03-04", "2025-03-05")
		require.NoError(t, err)

		note := "recalibration"
		require.NoError(t, svc.Update(ctx, first, models.UpdateBookingInput{StartDate: "2025-03-01", EndDate: "2025-03-03", Note: &note}))
		err = svc.Update(ctx, first, models.UpdateBookingInput{StartDate: "2025-03-02", EndDate: "2025-03-04"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("DoubleDelete", func(t *testing.T) {
		id, err := create("2025-06-01", "2025-06-02")
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, id))
		require.NoError(t, svc.Delete(ctx, id))

		err = svc.Delete(ctx, "p1")
		assert.ErrorIs(t, err, domain.ErrInvalidTarget)
	})

	t.Run("Summary", func(t *testing.T) {
		summary, err := svc.DaySummary(ctx, "eq1", "2025-03-04")
		require.NoError(t, err)
		require.NotNil(t, summary.Current)
		assert.Equal(t, "2025-03-04", summary.Current.StartDate)
		assert.Equal(t, "#fff", summary.Current.Person.TextColor)
		require.NotNil(t, summary.Last)
		assert.Equal(t, "2025-03-01", summary.Last.StartDate)
	})
}

func TestConcurrentCreatesSerialised(t *testing.T) {
	db := setupTestDB(t)
	seedDirectory(t, db)
	svc := newService(db)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, models.CreateBookingInput{EquipmentID: "eq1", PersonID: "p2", StartDate: "2025-09-01", EndDate: "2025-09-03"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)

	rows, err := db.CalendarBookings(ctx, "eq1", models.DateRange{Start: "2025-09-01", End: "2025-09-30"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
