package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

type StaffService struct {
	store store.StaffStore
	loc   *time.Location
	now   func() time.Time
}

func NewStaffService(st store.StaffStore, loc *time.Location) *StaffService {
	if loc == nil {
		loc = time.Local
	}
	return &StaffService{
		store: st,
		loc:   loc,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Attendance lists entry/exit pairs whose entry falls between the given
// dates, newest first.
func (s *StaffService) Attendance(ctx context.Context, staffID int64, fromDate, toDate string) (types.AttendanceResponse, error) {
	r, err := dayRange(fromDate, toDate, s.loc)
	if err != nil {
		return types.AttendanceResponse{}, err
	}

	recs, err := s.store.ListAttendance(ctx, staffID, r)
	if err != nil {
		return types.AttendanceResponse{}, err
	}

	out := types.AttendanceResponse{StaffID: staffID, Records: make([]types.AttendanceRecord, 0, len(recs))}
	for _, a := range recs {
		out.Records = append(out.Records, s.toAttendance(a))
	}
	return out, nil
}

// RecordAttendance opens a new entry or closes the latest open one for
// staffID.  Only one entry may be open at a time.
func (s *StaffService) RecordAttendance(ctx context.Context, staffID int64, req types.RecordAttendanceRequest) (types.RecordAttendanceResponse, error) {
	action := strings.ToLower(strings.TrimSpace(req.Action))
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = "manual"
	}

	var (
		rec store.AttendanceRecord
		msg string
		err error
	)
	switch action {
	case types.AttendanceEntry:
		rec, err = s.store.CheckIn(ctx, staffID, s.now(), strings.TrimSpace(req.Location), method)
		if errors.Is(err, store.ErrConflict) {
			return types.RecordAttendanceResponse{}, ErrAlreadyCheckedIn
		}
		msg = "Entry recorded"
	case types.AttendanceExit:
		rec, err = s.store.CheckOut(ctx, staffID, s.now())
		if errors.Is(err, store.ErrNotFound) {
			return types.RecordAttendanceResponse{}, ErrNotCheckedIn
		}
		msg = "Exit recorded"
	case "":
		return types.RecordAttendanceResponse{}, &MissingFieldsError{Fields: []string{"action"}}
	default:
		return types.RecordAttendanceResponse{}, invalid("action must be %q or %q", types.AttendanceEntry, types.AttendanceExit)
	}
	if err != nil {
		return types.RecordAttendanceResponse{}, err
	}

	return types.RecordAttendanceResponse{
		Message:          msg,
		StaffID:          staffID,
		AttendanceRecord: s.toAttendance(rec),
	}, nil
}

func (s *StaffService) toAttendance(a store.AttendanceRecord) types.AttendanceRecord {
	rec := types.AttendanceRecord{
		AttendanceID:       a.AttendanceID,
		EntryTime:          wireTime(a.Entry, s.loc),
		DurationHours:      a.Hours(),
		Location:           a.Location,
		VerificationMethod: a.VerificationMethod,
	}
	if a.Exit != nil {
		exit := wireTime(*a.Exit, s.loc)
		rec.ExitTime = &exit
	}
	return rec
}

func (s *StaffService) Schedule(ctx context.Context, staffID int64, fromDate, toDate string) (types.ScheduleResponse, error) {
	fromDate, toDate = strings.TrimSpace(fromDate), strings.TrimSpace(toDate)
	if _, err := dayRange(fromDate, toDate, s.loc); err != nil {
		return types.ScheduleResponse{}, err
	}

	recs, err := s.store.ListSchedule(ctx, staffID, fromDate, toDate)
	if err != nil {
		return types.ScheduleResponse{}, err
	}

	out := types.ScheduleResponse{StaffID: staffID, Schedules: make([]types.ScheduleEntry, 0, len(recs))}
	for _, sr := range recs {
		out.Schedules = append(out.Schedules, types.ScheduleEntry{
			ScheduleID:      sr.ScheduleID,
			ShiftDate:       sr.ShiftDate,
			ShiftStart:      sr.ShiftStart,
			ShiftEnd:        sr.ShiftEnd,
			TaskDescription: sr.TaskDescription,
		})
	}
	return out, nil
}
