package models

// Booking reserves one piece of equipment for one person over an inclusive
// range of days.
type Booking struct {
	ID          string `json:"id"`
	EquipmentID string `json:"equipmentId"`
	PersonID    string `json:"personId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Note        string `json:"note,omitempty"`
}

// Range returns the booking's days as a DateRange.
func (b Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// BookingPatch is applied to a stored booking as one combined update.
// A nil Note leaves the stored note untouched.
type BookingPatch struct {
	StartDate string
	EndDate   string
	Note      *string
}

// CreateBookingInput is the request to reserve equipment.
type CreateBookingInput struct {
	EquipmentID string `json:"equipmentId"`
	PersonID    string `json:"personId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Note        string `json:"note,omitempty"`
}

// UpdateBookingInput moves an existing booking. EquipmentID is optional;
// when set it must match the booking's equipment.
type UpdateBookingInput struct {
	EquipmentID string  `json:"equipmentId,omitempty"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	Note        *string `json:"note,omitempty"`
}
