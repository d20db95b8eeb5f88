package store

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a write that the current state does not allow,
	// such as a second open attendance entry.
	ErrConflict = errors.New("conflict")
)

// TimeRange bounds a listing.  Nil ends are open.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside r (both ends inclusive).
func (r TimeRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// Bounds returns the range as nullable unix-millisecond query arguments.
func (r TimeRange) Bounds() (from, to any) {
	if r.From != nil {
		from = r.From.UTC().UnixMilli()
	}
	if r.To != nil {
		to = r.To.UTC().UnixMilli()
	}
	return from, to
}
