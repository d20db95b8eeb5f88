package store

import (
	"context"
	"time"
)

// AccessEventRecord captures a single access decision for the audit log.
// ResidentID is nil when the recognizer produced no match.
type AccessEventRecord struct {
	EventID     int64 // assigned by the store
	ModuleID    string
	DoorName    string // filled on read from the module's door
	ResidentID  *int64
	ReceivedAt  time.Time
	RequestedAt *time.Time // optional device-reported timestamp
	Confidence  *float64
	Granted     bool
	Reason      string
	DecidedAt   time.Time
}

// AccessEventStore persists access decisions as an append-only audit log.
type AccessEventStore interface {
	RecordEvent(ctx context.Context, rec AccessEventRecord) error

	// ListForResident returns the resident's events, newest first.
	ListForResident(ctx context.Context, residentID int64, r TimeRange) ([]AccessEventRecord, error)

	// ListRecent returns events at every door, newest first.  limit <= 0
	// returns them all.
	ListRecent(ctx context.Context, r TimeRange, limit int) ([]AccessEventRecord, error)

	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
