package store

import (
	"context"
	"time"
)

type VisitorRecord struct {
	VisitorID     int64
	ResidentID    int64
	Name          string
	ContactNumber string
	VisitingUnit  string
	Status        string
	Start         time.Time
	End           time.Time
	FaceImageRef  string
}

type VisitorStore interface {
	// ListVisitors returns the resident's visitors ordered by start time.
	ListVisitors(ctx context.Context, residentID int64) ([]VisitorRecord, error)
	CreateVisitor(ctx context.Context, v VisitorRecord) (VisitorRecord, error)

	// ListActive returns approved visitors of every resident whose visit
	// window contains at, ordered by start time.
	ListActive(ctx context.Context, at time.Time) ([]VisitorRecord, error)

	// The mutators return ErrNotFound when the visitor does not belong to
	// the resident.
	UpdateVisitorStatus(ctx context.Context, residentID, visitorID int64, status string) (VisitorRecord, error)
	DeleteVisitor(ctx context.Context, residentID, visitorID int64) error
	SetVisitorFace(ctx context.Context, residentID, visitorID int64, ref string) error
}
