package api

import (
	"net/http"
	"strings"

	"equipbook/internal/models"
)

// handleListBookings serves the month calendar of one equipment, or the
// all-equipment matrix when all=1.
func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	monthStart, monthEnd := q.Get("monthStart"), q.Get("monthEnd")

	if q.Get("all") == "1" {
		rows, err := s.bookings.MatrixBookings(r.Context(), monthStart, monthEnd)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(rows))
		return
	}

	rows, err := s.bookings.CalendarBookings(r.Context(), q.Get("equipmentId"), monthStart, monthEnd)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var in models.CreateBookingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest)
		return
	}

	id, err := s.bookings.Create(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (s *Server) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	var in models.UpdateBookingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest)
		return
	}

	if err := s.bookings.Update(r.Context(), r.PathValue("id"), in); err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := s.bookings.Delete(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleDaySummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := s.bookings.DaySummary(r.Context(), q.Get("equipmentId"), q.Get("date"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// equipmentName resolves an id for display; the id itself is the fallback.
func (s *Server) equipmentName(r *http.Request, id string) string {
	items, err := s.directory.ActiveEquipment(r.Context())
	if err != nil {
		return id
	}
	for _, e := range items {
		if e.ID == id {
			return strings.TrimSpace(e.Name)
		}
	}
	return id
}
