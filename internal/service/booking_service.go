package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"equipbook/internal/calendar"
	"equipbook/internal/domain"
	"equipbook/internal/events"
	"equipbook/internal/lock"
	"equipbook/internal/metrics"
	"equipbook/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const lockKeyPrefix = "equipment:"

type BookingService struct {
	repo         domain.Repository
	locker       domain.Locker
	lockTTL      time.Duration
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	logger       *zerolog.Logger
}

// NewBookingService wires the booking engine. A nil locker disables write
// serialisation; eventBus and sheetsWorker may be nil.
func NewBookingService(repo domain.Repository, locker domain.Locker, lockTTL time.Duration, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	if lockTTL <= 0 {
		lockTTL = models.DefaultLockTTL
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BookingService{
		repo:         repo,
		locker:       locker,
		lockTTL:      lockTTL,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		logger:       logger,
	}
}

func (s *BookingService) Create(ctx context.Context, in models.CreateBookingInput) (string, error) {
	in.EquipmentID = strings.TrimSpace(in.EquipmentID)
	in.PersonID = strings.TrimSpace(in.PersonID)
	if in.EquipmentID == "" || in.PersonID == "" {
		return "", domain.Invalid(domain.CodeMissingFields, "equipmentId and personId are required")
	}
	r, err := validateRange(in.StartDate, in.EndDate, domain.CodeMissingFields)
	if err != nil {
		return "", err
	}

	booking := &models.Booking{
		EquipmentID: in.EquipmentID,
		PersonID:    in.PersonID,
		StartDate:   r.Start,
		EndDate:     r.End,
		Note:        in.Note,
	}

	err = s.withEquipmentLock(ctx, in.EquipmentID, func(ctx context.Context) error {
		if err := s.ensureFree(ctx, in.EquipmentID, r, ""); err != nil {
			return err
		}
		id, err := s.repo.CreateBooking(ctx, booking)
		if err != nil {
			return err
		}
		booking.ID = id
		return nil
	})
	if err != nil {
		s.observe("create", err)
		return "", err
	}
	s.observe("create", nil)

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("equipment_id", booking.EquipmentID).
		Str("start", booking.StartDate).
		Str("end", booking.EndDate).
		Msg("Booking created")

	s.publishEvent(events.EventBookingCreated, *booking)
	s.triggerSync(events.EventBookingCreated, booking.ID)
	return booking.ID, nil
}

func (s *BookingService) Update(ctx context.Context, id string, in models.UpdateBookingInput) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Invalid(domain.CodeMissingID, "booking id is required")
	}
	r, err := validateRange(in.StartDate, in.EndDate, domain.CodeMissingFields)
	if err != nil {
		return err
	}

	stored, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		s.observe("update", err)
		return err
	}
	equipmentID := stored.EquipmentID
	if want := strings.TrimSpace(in.EquipmentID); want != "" && want != equipmentID {
		err := fmt.Errorf("booking %s does not belong to equipment %s: %w", id, want, domain.ErrNotFound)
		s.observe("update", err)
		return err
	}

	patch := models.BookingPatch{StartDate: r.Start, EndDate: r.End, Note: in.Note}
	err = s.withEquipmentLock(ctx, equipmentID, func(ctx context.Context) error {
		if err := s.ensureFree(ctx, equipmentID, r, id); err != nil {
			return err
		}
		return s.repo.PatchBooking(ctx, id, patch)
	})
	if err != nil {
		s.observe("update", err)
		return err
	}
	s.observe("update", nil)

	s.logger.Info().
		Str("booking_id", id).
		Str("equipment_id", equipmentID).
		Str("start", r.Start).
		Str("end", r.End).
		Msg("Booking updated")

	updated := *stored
	updated.StartDate, updated.EndDate = r.Start, r.End
	if in.Note != nil {
		updated.Note = *in.Note
	}
	s.publishEvent(events.EventBookingUpdated, updated)
	s.triggerSync(events.EventBookingUpdated, id)
	return nil
}

// Delete is idempotent: a document that is already gone counts as deleted.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Invalid(domain.CodeMissingID, "booking id is required")
	}

	docType, err := s.repo.DocumentType(ctx, id)
	if err != nil {
		s.observe("delete", err)
		return err
	}
	switch docType {
	case "":
		s.observe("delete", nil)
		return nil
	case models.DocTypeBooking:
	default:
		err := fmt.Errorf("%s is a %s: %w", id, docType, domain.ErrInvalidTarget)
		s.observe("delete", err)
		return err
	}

	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("booking_id", id).Msg("Direct delete failed, retrying by query")
		if qErr := s.repo.DeleteBookingByQuery(ctx, id); qErr != nil {
			err = domain.Upstream("delete booking "+id, errors.Join(err, qErr))
			s.observe("delete", err)
			return err
		}
	}
	s.observe("delete", nil)

	s.logger.Info().Str("booking_id", id).Msg("Booking deleted")
	s.publishEvent(events.EventBookingDeleted, models.Booking{ID: id})
	s.triggerSync(events.EventBookingDeleted, id)
	return nil
}

func (s *BookingService) CalendarBookings(ctx context.Context, equipmentID, monthStart, monthEnd string) ([]models.CalendarBooking, error) {
	month, err := validateRange(monthStart, monthEnd, domain.CodeMissingMonthRange)
	if err != nil {
		return nil, err
	}
	equipmentID = strings.TrimSpace(equipmentID)
	if equipmentID == "" {
		return nil, domain.Invalid(domain.CodeMissingEquipment, "equipmentId is required")
	}

	rows, err := s.repo.CalendarBookings(ctx, equipmentID, month)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		annotatePerson(rows[i].Person)
	}
	return rows, nil
}

func (s *BookingService) MatrixBookings(ctx context.Context, monthStart, monthEnd string) ([]models.MatrixBooking, error) {
	month, err := validateRange(monthStart, monthEnd, domain.CodeMissingMonthRange)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.MatrixBookings(ctx, month)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		annotatePerson(rows[i].Person)
	}
	return rows, nil
}

// DaySummary looks up the current, previous and next booking around day in
// parallel. Any failed lookup fails the whole summary.
func (s *BookingService) DaySummary(ctx context.Context, equipmentID, day string) (*models.DaySummary, error) {
	equipmentID, day = strings.TrimSpace(equipmentID), strings.TrimSpace(day)
	if equipmentID == "" || day == "" {
		return nil, domain.Invalid(domain.CodeMissingParams, "equipmentId and date are required")
	}
	if !models.ValidDay(day) {
		return nil, domain.Invalid(domain.CodeInvalidDate, "date %q is not YYYY-MM-DD", day)
	}

	var summary models.DaySummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.Current, err = s.repo.CurrentBooking(gctx, equipmentID, day)
		return err
	})
	g.Go(func() (err error) {
		summary.Last, err = s.repo.LastBookingBefore(gctx, equipmentID, day)
		return err
	})
	g.Go(func() (err error) {
		summary.Next, err = s.repo.NextBookingAfter(gctx, equipmentID, day)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, b := range []*models.CalendarBooking{summary.Current, summary.Last, summary.Next} {
		if b != nil {
			annotatePerson(b.Person)
		}
	}
	return &summary, nil
}

// ReportRows returns every booking intersecting [start, end] ordered by
// asset number, then start date.
func (s *BookingService) ReportRows(ctx context.Context, start, end string) ([]models.ReportRow, error) {
	r, err := validateRange(start, end, domain.CodeMissingRange)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ReportRows(ctx, r)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AssetNumber != rows[j].AssetNumber {
			return rows[i].AssetNumber < rows[j].AssetNumber
		}
		return rows[i].StartDate < rows[j].StartDate
	})
	return rows, nil
}

func (s *BookingService) ensureFree(ctx context.Context, equipmentID string, r models.DateRange, excludeID string) error {
	n, err := s.repo.CountOverlapping(ctx, equipmentID, r, excludeID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("equipment %s has %d booking(s) within %s..%s: %w", equipmentID, n, r.Start, r.End, domain.ErrConflict)
	}
	return nil
}

// withEquipmentLock runs fn while holding the equipment's booking lock.
// Waiting for the lock is bounded by the lock ttl.
func (s *BookingService) withEquipmentLock(ctx context.Context, equipmentID string, fn func(context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.lockTTL)
	release, err := s.locker.Acquire(waitCtx, lockKeyPrefix+equipmentID, s.lockTTL)
	cancel()
	if errors.Is(err, lock.ErrNotAcquired) {
		return &domain.Error{Kind: domain.ErrConflict, Code: domain.CodeBusy, Msg: err.Error()}
	}
	if err != nil {
		return domain.Upstream("acquire booking lock", err)
	}
	defer release()

	return fn(ctx)
}

func (s *BookingService) observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = domain.Code(err)
	}
	metrics.IncBooking(operation, outcome)
}

func (s *BookingService) publishEvent(eventType string, booking models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		EquipmentID: booking.EquipmentID,
		PersonID:    booking.PersonID,
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
		Note:        booking.Note,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) triggerSync(reason, bookingID string) {
	if s.sheetsWorker == nil {
		return
	}
	s.sheetsWorker.Trigger(reason, bookingID)
}

func annotatePerson(p *models.PersonRef) {
	if p == nil || p.Color == "" {
		return
	}
	p.TextColor = calendar.BestTextColor(p.Color)
}
