package worker

import (
	"context"
	"fmt"
	"time"

	"equipbook/internal/calendar"
	"equipbook/internal/domain"
	"equipbook/internal/metrics"
	"equipbook/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const syncTimeout = time.Minute

// ReportSource yields the usage rows of a window, already ordered.
type ReportSource interface {
	ReportRows(ctx context.Context, r models.DateRange) ([]models.ReportRow, error)
}

// SheetsWorker rebuilds the usage mirror whenever a booking changes and on
// a cron schedule. Triggers arriving while a run is already queued are
// coalesced into it.
type SheetsWorker struct {
	source       ReportSource
	sheets       domain.UsageSheetWriter
	retryPolicy  RetryPolicy
	queue        chan models.SyncTask
	monthsBefore int
	monthsAfter  int
	now          func() time.Time
	cron         *cron.Cron
	logger       *zerolog.Logger
}

// SyncWindow is how many whole months around the current one are mirrored.
type SyncWindow struct {
	MonthsBefore int
	MonthsAfter  int
}

func NewSheetsWorker(source ReportSource, sheets domain.UsageSheetWriter, retry RetryPolicy, cfg SyncWindow, logger *zerolog.Logger) *SheetsWorker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "sheets_worker").Logger()

	return &SheetsWorker{
		source:       source,
		sheets:       sheets,
		retryPolicy:  retry.withDefaults(),
		queue:        make(chan models.SyncTask, models.SyncQueueSize),
		monthsBefore: cfg.MonthsBefore,
		monthsAfter:  cfg.MonthsAfter,
		now:          time.Now,
		logger:       &l,
	}
}

// Trigger asks for a resync. It never blocks the caller.
func (w *SheetsWorker) Trigger(reason, bookingID string) {
	task := models.SyncTask{Reason: reason, BookingID: bookingID, RequestedAt: w.now()}
	select {
	case w.queue <- task:
	default:
		w.logger.Debug().Str("reason", reason).Str("booking_id", bookingID).Msg("sync already pending, trigger coalesced")
	}
}

// Schedule registers a periodic full resync using a cron spec such as
// "@every 30m" or "0 */2 * * *".
func (w *SheetsWorker) Schedule(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { w.Trigger("schedule", "") }); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	w.cron = c
	return nil
}

// Start runs until ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	if w.cron != nil {
		w.cron.Start()
		defer func() { <-w.cron.Stop().Done() }()
	}

	w.logger.Info().Msg("sheets worker started")
	defer w.logger.Info().Msg("sheets worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.process(ctx, task)
		}
	}
}

// process runs one sync with backoff; the last error is logged, not returned.
func (w *SheetsWorker) process(ctx context.Context, task models.SyncTask) {
	for {
		task.Attempt++
		err := w.syncOnce(ctx)
		if err == nil {
			metrics.IncSheetsSync("ok")
			w.logger.Info().
				Str("reason", task.Reason).
				Str("booking_id", task.BookingID).
				Int("attempt", task.Attempt).
				Msg("usage sheet synced")
			return
		}

		if ctx.Err() != nil {
			return
		}

		if task.Attempt >= w.retryPolicy.MaxRetries {
			metrics.IncSheetsSync("failed")
			w.logger.Error().Err(err).
				Str("reason", task.Reason).
				Int("attempt", task.Attempt).
				Msg("usage sheet sync failed, giving up")
			return
		}

		metrics.IncSheetsSync("retry")
		delay := w.retryPolicy.NextDelay(task.Attempt)
		w.logger.Warn().Err(err).
			Int("attempt", task.Attempt).
			Dur("retry_in", delay).
			Msg("usage sheet sync failed")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (w *SheetsWorker) syncOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	window := calendar.Window(w.now(), w.monthsBefore, w.monthsAfter)
	rows, err := w.source.ReportRows(ctx, window)
	if err != nil {
		return fmt.Errorf("load report rows: %w", err)
	}
	return w.sheets.ReplaceUsageSheet(ctx, window, rows)
}
