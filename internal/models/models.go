package models

// PersonRef is the person projection joined onto calendar rows.
type PersonRef struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName,omitempty"`
	Initials  string `json:"initials"`
	Color     string `json:"color,omitempty"`
	Location  string `json:"location,omitempty"`
	TextColor string `json:"textColor,omitempty"`
}

// EquipmentRef is the equipment projection joined onto matrix rows.
type EquipmentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CalendarBooking is a booking of one equipment, as shown in the month
// calendar and in the day summary.
type CalendarBooking struct {
	ID        string     `json:"id"`
	StartDate string     `json:"startDate"`
	EndDate   string     `json:"endDate"`
	Note      string     `json:"note,omitempty"`
	Person    *PersonRef `json:"person"`
}

// MatrixBooking is the compact row of the all-equipment month matrix.
type MatrixBooking struct {
	ID        string        `json:"id"`
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
	Equipment *EquipmentRef `json:"equipment"`
	Person    *PersonRef    `json:"person"`
}

// DaySummary describes one equipment relative to a given day. Any of the
// three may be nil.
type DaySummary struct {
	Current *CalendarBooking `json:"current"`
	Last    *CalendarBooking `json:"last"`
	Next    *CalendarBooking `json:"next"`
}

// ReportRow is a flattened usage row ordered by asset number then start.
type ReportRow struct {
	ID            string `json:"id"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Note          string `json:"note,omitempty"`
	PersonName    string `json:"personName"`
	EquipmentID   string `json:"equipmentId"`
	EquipmentName string `json:"equipmentName"`
	AssetNumber   string `json:"assetNumber"`
}
