package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

// StaffStore holds attendance and schedules seeded up front.  Check-ins
// append to the seeded attendance.
type StaffStore struct {
	mu         sync.RWMutex
	lastID     int64
	attendance []store.AttendanceRecord
	schedules  []store.ScheduleRecord
}

func NewStaffStore(attendance []store.AttendanceRecord, schedules []store.ScheduleRecord) *StaffStore {
	s := &StaffStore{attendance: attendance, schedules: schedules}
	for _, a := range attendance {
		s.lastID = max(s.lastID, a.AttendanceID)
	}
	return s
}

func (s *StaffStore) ListAttendance(_ context.Context, staffID int64, r store.TimeRange) ([]store.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.AttendanceRecord
	for _, a := range s.attendance {
		if a.StaffID == staffID && r.Contains(a.Entry) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Entry.After(out[j].Entry) })
	return out, nil
}

func (s *StaffStore) ListSchedule(_ context.Context, staffID int64, fromDate, toDate string) ([]store.ScheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.ScheduleRecord
	for _, sr := range s.schedules {
		if sr.StaffID != staffID {
			continue
		}
		if fromDate != "" && sr.ShiftDate < fromDate {
			continue
		}
		if toDate != "" && sr.ShiftDate > toDate {
			continue
		}
		out = append(out, sr)
	}
	return out, nil
}

func (s *StaffStore) CheckIn(_ context.Context, staffID int64, at time.Time, location, method string) (store.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open(staffID) >= 0 {
		return store.AttendanceRecord{}, store.ErrConflict
	}
	s.lastID++
	a := store.AttendanceRecord{
		AttendanceID:       s.lastID,
		StaffID:            staffID,
		Entry:              at,
		Location:           location,
		VerificationMethod: method,
	}
	s.attendance = append(s.attendance, a)
	return a, nil
}

func (s *StaffStore) CheckOut(_ context.Context, staffID int64, at time.Time) (store.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.open(staffID)
	if i < 0 {
		return store.AttendanceRecord{}, store.ErrNotFound
	}
	s.attendance[i].Exit = &at
	return s.attendance[i], nil
}

// open returns the index of staffID's latest open entry, or -1.
func (s *StaffStore) open(staffID int64) int {
	idx := -1
	for i, a := range s.attendance {
		if a.StaffID != staffID || a.Exit != nil {
			continue
		}
		if idx < 0 || a.Entry.After(s.attendance[idx].Entry) {
			idx = i
		}
	}
	return idx
}
