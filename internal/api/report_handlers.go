package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"equipbook/internal/models"
	"equipbook/internal/report"

	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := s.directory.ActiveEquipment(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.directory.ActivePeople(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(people))
}

// reportRows loads the rows for the start/end query and echoes the window.
func (s *Server) reportRows(r *http.Request) (models.DateRange, []models.ReportRow, error) {
	q := r.URL.Query()
	window := models.DateRange{Start: strings.TrimSpace(q.Get("start")), End: strings.TrimSpace(q.Get("end"))}
	rows, err := s.bookings.ReportRows(r.Context(), window.Start, window.End)
	return window, rows, err
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	_, rows, err := s.reportRows(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	window, rows, err := s.reportRows(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rows); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render csv")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", report.Filename(window, "csv"), buf.Bytes())
}

func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	window, rows, err := s.reportRows(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, window, rows); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render xlsx")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeAttachment(w, xlsxContentType, report.Filename(window, "xlsx"), buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady pings the content store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.directory.Ready(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
