package models

import "time"

// SyncTask is one request to rebuild the usage mirror.
type SyncTask struct {
	Reason      string    `json:"reason"`
	BookingID   string    `json:"booking_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
	Attempt     int       `json:"attempt"`
}
