package store

import (
	"context"
	"time"
)

type AlertRecord struct {
	AlertID     int64
	ResidentID  int64
	Description string
	Read        bool
	CreatedAt   time.Time
}

type AlertStore interface {
	CreateAlert(ctx context.Context, residentID int64, description string, at time.Time) (int64, error)

	// ListAlerts returns the resident's alerts, newest first.
	ListAlerts(ctx context.Context, residentID int64) ([]AlertRecord, error)

	// MarkRead returns ErrNotFound when the alert does not belong to the
	// resident.
	MarkRead(ctx context.Context, residentID, alertID int64, at time.Time) error

	// CountUnread counts unread alerts of every resident created at or
	// after since.
	CountUnread(ctx context.Context, since time.Time) (int, error)
}
