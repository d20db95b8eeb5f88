package store

import (
	"context"
	"time"
)

// AttendanceRecord is one entry punch and, once recorded, its exit.
type AttendanceRecord struct {
	AttendanceID       int64
	StaffID            int64
	Entry              time.Time
	Exit               *time.Time
	Location           string
	VerificationMethod string
}

// Hours returns the worked hours rounded to two decimals, or nil while the
// shift is still open.
func (a AttendanceRecord) Hours() *float64 {
	if a.Exit == nil {
		return nil
	}
	h := float64(a.Exit.Sub(a.Entry).Milliseconds()) / float64(time.Hour.Milliseconds())
	h = float64(int64(h*100+0.5)) / 100
	return &h
}

type ScheduleRecord struct {
	ScheduleID      int64
	StaffID         int64
	ShiftDate       string // YYYY-MM-DD
	ShiftStart      string // HH:MM
	ShiftEnd        string
	TaskDescription string
}

type StaffStore interface {
	// ListAttendance returns entries whose entry time is inside r, newest
	// first.
	ListAttendance(ctx context.Context, staffID int64, r TimeRange) ([]AttendanceRecord, error)

	// ListSchedule returns shifts with fromDate <= shift_date <= toDate
	// (YYYY-MM-DD, empty = open) in input order of the table.
	ListSchedule(ctx context.Context, staffID int64, fromDate, toDate string) ([]ScheduleRecord, error)

	// CheckIn opens an attendance entry at at.  It returns ErrConflict when
	// the staff member already has an open entry.
	CheckIn(ctx context.Context, staffID int64, at time.Time, location, method string) (AttendanceRecord, error)

	// CheckOut closes the staff member's latest open entry at at.  It
	// returns ErrNotFound when nothing is open.
	CheckOut(ctx context.Context, staffID int64, at time.Time) (AttendanceRecord, error)
}
