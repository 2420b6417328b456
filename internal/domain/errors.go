package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("booking dates clash")
	ErrNotFound      = errors.New("not found")
	ErrInvalidTarget = errors.New("document is not a booking")
	ErrUpstream      = errors.New("content store failure")
)

// Machine-readable codes returned to API clients in {"error": code}.
const (
	CodeMissingFields     = "missing_fields"
	CodeInvalidDate       = "invalid_date"
	CodeInvalidRange      = "invalid_range"
	CodeMissingID         = "missing_id"
	CodeMissingMonthRange = "missing_month_range"
	CodeMissingEquipment  = "missing_equipmentId"
	CodeMissingParams     = "missing_params"
	CodeMissingRange      = "missing_range"
	CodeConflict          = "conflict"
	CodeBusy              = "equipment_busy"
	CodeNotFound          = "not_found"
	CodeNotABooking       = "not_a_booking"
	CodeUpstream          = "upstream_failure"
)

// Error pairs a sentinel kind with a client-facing code.
type Error struct {
	Kind error
	Code string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// Invalid builds an ErrValidation error with the given code.
func Invalid(code, format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Upstream wraps a transport or store failure as ErrUpstream.
func Upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}

// Code returns the client-facing code of err, derived from its kind when
// no explicit code was attached.
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != "" {
		return de.Code
	}
	switch {
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidTarget):
		return CodeNotABooking
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrValidation):
		return "invalid_request"
	}
	return CodeUpstream
}
