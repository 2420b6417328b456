// Package calendar holds month arithmetic and colour helpers shared by the
// API, the exports and the sheets mirror.
package calendar

import (
	"time"

	"equipbook/internal/models"
)

// FirstOfMonth returns midnight of the first day of t's month in t's location.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// LastOfMonth returns midnight of the last day of t's month.
func LastOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// MonthRange is the inclusive day range covering t's month.
func MonthRange(t time.Time) models.DateRange {
	return models.DateRange{
		Start: models.FormatDay(FirstOfMonth(t)),
		End:   models.FormatDay(LastOfMonth(t)),
	}
}

// ShiftMonths moves to the first of the month n months away.
func ShiftMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
}

// Window spans from the first day `before` months back to the last day
// `after` months ahead of t.
func Window(t time.Time, before, after int) models.DateRange {
	return models.DateRange{
		Start: models.FormatDay(ShiftMonths(t, -before)),
		End:   models.FormatDay(LastOfMonth(ShiftMonths(t, after))),
	}
}

// View is the Monday-first grid shown for one month.
type View struct {
	Start time.Time
	End   time.Time
	Days  []time.Time
}

// Range returns the grid bounds as day strings.
func (v View) Range() models.DateRange {
	return models.DateRange{Start: models.FormatDay(v.Start), End: models.FormatDay(v.End)}
}

// DaysInView returns full weeks, Monday through Sunday, covering month.
func DaysInView(month time.Time) View {
	first := FirstOfMonth(month)
	last := LastOfMonth(month)

	start := first.AddDate(0, 0, -mondayOffset(first))
	end := last.AddDate(0, 0, 6-mondayOffset(last))

	days := make([]time.Time, 0, 42)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return View{Start: start, End: end, Days: days}
}

// mondayOffset is 0 for Monday through 6 for Sunday.
func mondayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
