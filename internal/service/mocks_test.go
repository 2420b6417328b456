package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"equipbook/internal/domain"
	"equipbook/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) ActivePeople(ctx context.Context) ([]models.Person, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Person), args.Error(1)
}
func (m *mockRepo) ActiveEquipment(ctx context.Context) ([]models.Equipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Equipment), args.Error(1)
}
func (m *mockRepo) CalendarBookings(ctx context.Context, eq string, month models.DateRange) ([]models.CalendarBooking, error) {
	args := m.Called(ctx, eq, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CalendarBooking), args.Error(1)
}
func (m *mockRepo) MatrixBookings(ctx context.Context, month models.DateRange) ([]models.MatrixBooking, error) {
	args := m.Called(ctx, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MatrixBooking), args.Error(1)
}
func (m *mockRepo) ReportRows(ctx context.Context, r models.DateRange) ([]models.ReportRow, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReportRow), args.Error(1)
}
func (m *mockRepo) CountOverlapping(ctx context.Context, eq string, r models.DateRange, excludeID string) (int, error) {
	args := m.Called(ctx, eq, r, excludeID)
	return args.Int(0), args.Error(1)
}
func (m *mockRepo) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) DocumentType(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}
func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) (string, error) {
	args := m.Called(ctx, b)
	return args.String(0), args.Error(1)
}
func (m *mockRepo) PatchBooking(ctx context.Context, id string, p models.BookingPatch) error {
	return m.Called(ctx, id, p).Error(0)
}
func (m *mockRepo) DeleteDocument(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) DeleteBookingByQuery(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) CurrentBooking(ctx context.Context, eq, day string) (*models.CalendarBooking, error) {
	args := m.Called(ctx, eq, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarBooking), args.Error(1)
}
func (m *mockRepo) LastBookingBefore(ctx context.Context, eq, day string) (*models.CalendarBooking, error) {
	args := m.Called(ctx, eq, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarBooking), args.Error(1)
}
func (m *mockRepo) NextBookingAfter(ctx context.Context, eq, day string) (*models.CalendarBooking, error) {
	args := m.Called(ctx, eq, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarBooking), args.Error(1)
}
func (m *mockRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockSyncWorker struct {
	mock.Mock
}

func (m *mockSyncWorker) Trigger(reason, bookingID string) {
	m.Called(reason, bookingID)
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// fakeStore keeps bookings in memory. Its count and create are separate
// steps, so without a lock concurrent creates can interleave between them.
type fakeStore struct {
	mockRepo
	mu       sync.Mutex
	seq      int
	bookings map[string]models.Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: make(map[string]models.Booking)}
}

func (f *fakeStore) CountOverlapping(_ context.Context, eq string, r models.DateRange, excludeID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, b := range f.bookings {
		if id != excludeID && b.EquipmentID == eq && Overlaps(b.Range(), r) {
			n++
		}
	}
	// Widen the window between check and write.
	time.Sleep(time.Millisecond)
	return n, nil
}

func (f *fakeStore) CreateBooking(_ context.Context, b *models.Booking) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := fmt.Sprintf("b%d", f.seq)
	stored := *b
	stored.ID = id
	f.bookings[id] = stored
	return id, nil
}

func (f *fakeStore) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (f *fakeStore) PatchBooking(_ context.Context, id string, p models.BookingPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.StartDate, b.EndDate = p.StartDate, p.EndDate
	if p.Note != nil {
		b.Note = *p.Note
	}
	f.bookings[id] = b
	return nil
}

func (f *fakeStore) DocumentType(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[id]; ok {
		return models.DocTypeBooking, nil
	}
	return "", nil
}

func (f *fakeStore) DeleteDocument(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bookings, id)
	return nil
}

func (f *fakeStore) all(eq string) []models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.EquipmentID == eq {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	return out
}
