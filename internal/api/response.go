package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"equipbook/internal/domain"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

const (
	codeBadRequest      = "bad_request"
	codeMissingPassword = "missing_password"
	codeUnauthorized    = "unauthorized"
	codeRateLimited     = "rate_limited"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code string) {
	writeJSON(w, statusCode, map[string]string{"error": code})
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// statusFor maps a service error onto its HTTP status. Anything that is not
// a known client error is a store failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidTarget):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// fail writes err as {"error": code} and logs store failures.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := domain.Code(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		code = domain.CodeUpstream
	}
	writeError(w, status, code)
}

// decodeJSON reads a size-capped JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// nonNil keeps empty result sets encoding as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
