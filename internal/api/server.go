// Package api is the HTTP surface: session login, booking and directory
// routes, report exports and the gatekeeper in front of all of them.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"equipbook/internal/config"
	"equipbook/internal/domain"

	"github.com/rs/zerolog"
)

type Server struct {
	cfg       *config.Config
	bookings  domain.BookingService
	directory domain.DirectoryService
	secret    []byte
	limiter   *loginLimiter
	now       func() time.Time
	logger    *zerolog.Logger
	server    *http.Server
}

func NewServer(cfg *config.Config, bookings domain.BookingService, directory domain.DirectoryService, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "http").Logger()

	s := &Server{
		cfg:       cfg,
		bookings:  bookings,
		directory: directory,
		secret:    []byte(cfg.Auth.SessionSecret),
		limiter:   newLoginLimiter(cfg.Auth.LoginLimit),
		now:       time.Now,
		logger:    &l,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the routed mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)

	mux.HandleFunc("GET /api/bookings", s.handleListBookings)
	mux.HandleFunc("POST /api/bookings", s.handleCreateBooking)
	mux.HandleFunc("GET /api/bookings/summary", s.handleDaySummary)
	mux.HandleFunc("GET /api/bookings/ics", s.handleBookingsICS)
	mux.HandleFunc("PATCH /api/bookings/{id}", s.handleUpdateBooking)
	mux.HandleFunc("DELETE /api/bookings/{id}", s.handleDeleteBooking)

	mux.HandleFunc("GET /api/equipment", s.handleEquipment)
	mux.HandleFunc("GET /api/people", s.handlePeople)

	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/report/csv", s.handleReportCSV)
	mux.HandleFunc("GET /api/report/xlsx", s.handleReportXLSX)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	s.registerPages(mux)

	return s.instrument(s.recoverPanic(s.noStore(s.gatekeeper(mux))))
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
