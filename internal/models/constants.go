package models

import "time"

// Document types stored in the content store.
const (
	DocTypeBooking   = "booking"
	DocTypePerson    = "person"
	DocTypeEquipment = "equipment"
)

const (
	// DefaultSessionTTL is how long a freshly issued session stays valid.
	DefaultSessionTTL = 12 * time.Hour

	// DefaultSessionCookie is the cookie carrying the session token.
	DefaultSessionCookie = "equipbook_session"

	// DefaultLockTTL bounds how long a per-equipment booking lock is held.
	DefaultLockTTL = 10 * time.Second

	// DefaultStoreTimeout applies to each call against the content store.
	DefaultStoreTimeout = 15 * time.Second

	// Sheets mirror window around the current month.
	DefaultSyncMonthsBefore = 1
	DefaultSyncMonthsAfter  = 2

	// SyncQueueSize is the buffer of the sheets sync trigger queue.
	SyncQueueSize = 1

	// NotifyQueueSize is the buffer of pending chat notifications.
	NotifyQueueSize = 100
)
