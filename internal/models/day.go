package models

import (
	"fmt"
	"time"
)

// DayLayout is the only textual form a booking date may take. Lexicographic
// order of this form equals calendar order, which the overlap predicate and
// every store query rely on.
const DayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD string. Anything that does not survive a
// round trip through the layout (missing zero padding, trailing time, etc.)
// is rejected.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	if t.Format(DayLayout) != s {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDay renders t in DayLayout.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// ValidDay reports whether s is a well-formed day string.
func ValidDay(s string) bool {
	_, err := ParseDay(s)
	return err == nil
}

// DateRange is an inclusive range of days.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// NewDateRange validates both bounds and their order.
func NewDateRange(start, end string) (DateRange, error) {
	if _, err := ParseDay(start); err != nil {
		return DateRange{}, err
	}
	if _, err := ParseDay(end); err != nil {
		return DateRange{}, err
	}
	if start > end {
		return DateRange{}, fmt.Errorf("start %s is after end %s", start, end)
	}
	return DateRange{Start: start, End: end}, nil
}

// Contains reports whether day falls inside the range.
func (r DateRange) Contains(day string) bool {
	return r.Start <= day && day <= r.End
}

// Overlaps is the inclusive interval intersection test. Two ranges that
// share a single boundary day overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return other.Start <= r.End && other.End >= r.Start
}
