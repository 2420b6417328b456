package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"equipbook/internal/calendar"
	"equipbook/internal/models"

	ical "github.com/arran4/golang-ical"
)

// Default feed window when the caller gives no range.
const (
	icsMonthsBefore = 3
	icsMonthsAfter  = 12
)

// handleBookingsICS serves the bookings of one equipment as an all-day
// iCalendar feed that calendar clients can subscribe to.
func (s *Server) handleBookingsICS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	equipmentID := q.Get("equipmentId")

	window := models.DateRange{Start: q.Get("start"), End: q.Get("end")}
	if window.Start == "" && window.End == "" {
		window = calendar.Window(s.now(), icsMonthsBefore, icsMonthsAfter)
	}

	rows, err := s.bookings.CalendarBookings(r.Context(), equipmentID, window.Start, window.End)
	if err != nil {
		fail(w, r, err)
		return
	}

	name := s.equipmentName(r, strings.TrimSpace(equipmentID))
	body := buildCalendar(name, rows, s.now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="bookings_%s.ics"`, sanitizeFilename(equipmentID)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func buildCalendar(name string, rows []models.CalendarBooking, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//equipbook//bookings//EN")
	cal.SetXWRCalName(name + " bookings")

	for _, b := range rows {
		start, err := models.ParseDay(b.StartDate)
		if err != nil {
			continue
		}
		end, err := models.ParseDay(b.EndDate)
		if err != nil {
			continue
		}

		event := cal.AddEvent(b.ID + "@equipbook")
		event.SetDtStampTime(stamp.UTC())
		event.SetAllDayStartAt(start)
		// DTEND of an all-day event is exclusive.
		event.SetAllDayEndAt(end.AddDate(0, 0, 1))
		event.SetSummary(eventSummary(name, b))
		if b.Note != "" {
			event.SetDescription(b.Note)
		}
		if b.Person != nil && b.Person.Location != "" {
			event.SetLocation(b.Person.Location)
		}
	}
	return cal.Serialize()
}

func eventSummary(equipment string, b models.CalendarBooking) string {
	who := ""
	if b.Person != nil {
		who = b.Person.FullName
		if who == "" {
			who = b.Person.Initials
		}
	}
	if who == "" {
		return equipment
	}
	return fmt.Sprintf("%s: %s", equipment, who)
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, s)
}
