package service

import (
	"strings"

	"equipbook/internal/domain"
	"equipbook/internal/models"
)

// Overlaps reports whether candidate intersects existing. Both ranges are
// inclusive, so touching at a single day counts.
func Overlaps(existing, candidate models.DateRange) bool {
	return existing.Overlaps(candidate)
}

// validateRange checks both day strings and their order. Missing values
// are reported with missingCode.
func validateRange(start, end, missingCode string) (models.DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return models.DateRange{}, domain.Invalid(missingCode, "start and end dates are required")
	}
	if !models.ValidDay(start) {
		return models.DateRange{}, domain.Invalid(domain.CodeInvalidDate, "start %q is not YYYY-MM-DD", start)
	}
	if !models.ValidDay(end) {
		return models.DateRange{}, domain.Invalid(domain.CodeInvalidDate, "end %q is not YYYY-MM-DD", end)
	}
	if start > end {
		return models.DateRange{}, domain.Invalid(domain.CodeInvalidRange, "start %s is after end %s", start, end)
	}
	return models.DateRange{Start: start, End: end}, nil
}
