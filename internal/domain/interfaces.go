package domain

import (
	"context"
	"time"

	"equipbook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository is the typed contract of the content store. Every call is a
// remote round trip; implementations wrap transport failures in ErrUpstream.
type Repository interface {
	ActivePeople(ctx context.Context) ([]models.Person, error)
	ActiveEquipment(ctx context.Context) ([]models.Equipment, error)

	CalendarBookings(ctx context.Context, equipmentID string, month models.DateRange) ([]models.CalendarBooking, error)
	MatrixBookings(ctx context.Context, month models.DateRange) ([]models.MatrixBooking, error)
	ReportRows(ctx context.Context, r models.DateRange) ([]models.ReportRow, error)

	// CountOverlapping counts bookings of equipmentID intersecting r,
	// ignoring the booking with id excludeID when it is non-empty.
	CountOverlapping(ctx context.Context, equipmentID string, r models.DateRange, excludeID string) (int, error)
	// GetBooking returns the stored booking, or ErrNotFound.
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	// DocumentType returns the type of any document by id, "" when absent.
	DocumentType(ctx context.Context, id string) (string, error)

	CreateBooking(ctx context.Context, b *models.Booking) (string, error)
	PatchBooking(ctx context.Context, id string, patch models.BookingPatch) error
	DeleteDocument(ctx context.Context, id string) error
	DeleteBookingByQuery(ctx context.Context, id string) error

	CurrentBooking(ctx context.Context, equipmentID, day string) (*models.CalendarBooking, error)
	LastBookingBefore(ctx context.Context, equipmentID, day string) (*models.CalendarBooking, error)
	NextBookingAfter(ctx context.Context, equipmentID, day string) (*models.CalendarBooking, error)

	Ping(ctx context.Context) error
}

// Locker serialises the check-then-write sequence for one key.
type Locker interface {
	// Acquire blocks until the key is held, ctx is done, or ttl-bounded
	// attempts are exhausted. The returned func releases the lock.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UsageSheetWriter mirrors report rows into an external spreadsheet.
type UsageSheetWriter interface {
	ReplaceUsageSheet(ctx context.Context, window models.DateRange, rows []models.ReportRow) error
}

type SyncWorker interface {
	Trigger(reason, bookingID string)
}

type BookingService interface {
	Create(ctx context.Context, in models.CreateBookingInput) (string, error)
	Update(ctx context.Context, id string, in models.UpdateBookingInput) error
	Delete(ctx context.Context, id string) error
	CalendarBookings(ctx context.Context, equipmentID, monthStart, monthEnd string) ([]models.CalendarBooking, error)
	MatrixBookings(ctx context.Context, monthStart, monthEnd string) ([]models.MatrixBooking, error)
	DaySummary(ctx context.Context, equipmentID, day string) (*models.DaySummary, error)
	ReportRows(ctx context.Context, start, end string) ([]models.ReportRow, error)
}

type DirectoryService interface {
	ActivePeople(ctx context.Context) ([]models.Person, error)
	ActiveEquipment(ctx context.Context) ([]models.Equipment, error)
	Ready(ctx context.Context) error
}
