package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dbpkg "github.com/BrandonDHaskell/Portunus/condo/internal/db"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

type StaffStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewStaffStore(db *sql.DB, writer *dbpkg.Worker) *StaffStore {
	return &StaffStore{db: db, writer: writer}
}

func (s *StaffStore) ListAttendance(ctx context.Context, staffID int64, r store.TimeRange) ([]store.AttendanceRecord, error) {
	from, to := r.Bounds()

	rows, err := s.db.QueryContext(ctx, `
SELECT attendance_id, staff_id, entry_time_ms, exit_time_ms, location, verification_method
FROM attendance
WHERE staff_id = ?
  AND (? IS NULL OR entry_time_ms >= ?)
  AND (? IS NULL OR entry_time_ms <= ?)
ORDER BY entry_time_ms DESC;
`, staffID, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("ListAttendance query: %w", err)
	}
	defer rows.Close()

	var out []store.AttendanceRecord
	for rows.Next() {
		var (
			a       store.AttendanceRecord
			entryMs int64
			exitMs  sql.NullInt64
		)
		if err := rows.Scan(&a.AttendanceID, &a.StaffID, &entryMs, &exitMs,
			&a.Location, &a.VerificationMethod); err != nil {
			return nil, fmt.Errorf("ListAttendance scan: %w", err)
		}
		a.Entry = time.UnixMilli(entryMs).UTC()
		if exitMs.Valid {
			t := time.UnixMilli(exitMs.Int64).UTC()
			a.Exit = &t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *StaffStore) ListSchedule(ctx context.Context, staffID int64, fromDate, toDate string) ([]store.ScheduleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT schedule_id, staff_id, shift_date, shift_start, shift_end, task_description
FROM schedules
WHERE staff_id = ?
  AND (? = '' OR shift_date >= ?)
  AND (? = '' OR shift_date <= ?)
ORDER BY schedule_id;
`, staffID, fromDate, fromDate, toDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("ListSchedule query: %w", err)
	}
	defer rows.Close()

	var out []store.ScheduleRecord
	for rows.Next() {
		var sr store.ScheduleRecord
		if err := rows.Scan(&sr.ScheduleID, &sr.StaffID, &sr.ShiftDate, &sr.ShiftStart,
			&sr.ShiftEnd, &sr.TaskDescription); err != nil {
			return nil, fmt.Errorf("ListSchedule scan: %w", err)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

func (s *StaffStore) CheckIn(ctx context.Context, staffID int64, at time.Time, location, method string) (store.AttendanceRecord, error) {
	a := store.AttendanceRecord{
		StaffID:            staffID,
		Entry:              at.UTC(),
		Location:           location,
		VerificationMethod: method,
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var open int
		if err := tx.QueryRowContext(ctx, `
SELECT COUNT(*) FROM attendance WHERE staff_id = ? AND exit_time_ms IS NULL;
`, staffID).Scan(&open); err != nil {
			return fmt.Errorf("CheckIn lookup: %w", err)
		}
		if open > 0 {
			return store.ErrConflict
		}

		res, err := tx.ExecContext(ctx, `
INSERT INTO attendance(staff_id, entry_time_ms, location, verification_method)
VALUES (?, ?, ?, ?);
`, staffID, a.Entry.UnixMilli(), location, method)
		if err != nil {
			return fmt.Errorf("CheckIn insert: %w", err)
		}
		a.AttendanceID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return store.AttendanceRecord{}, err
	}
	return a, nil
}

func (s *StaffStore) CheckOut(ctx context.Context, staffID int64, at time.Time) (store.AttendanceRecord, error) {
	var a store.AttendanceRecord
	exit := at.UTC()

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var entryMs int64
		err := tx.QueryRowContext(ctx, `
SELECT attendance_id, entry_time_ms, location, verification_method
FROM attendance
WHERE staff_id = ? AND exit_time_ms IS NULL
ORDER BY entry_time_ms DESC, attendance_id DESC
LIMIT 1;
`, staffID).Scan(&a.AttendanceID, &entryMs, &a.Location, &a.VerificationMethod)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("CheckOut lookup: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE attendance SET exit_time_ms = ? WHERE attendance_id = ?;`,
			exit.UnixMilli(), a.AttendanceID,
		); err != nil {
			return fmt.Errorf("CheckOut update: %w", err)
		}
		a.StaffID = staffID
		a.Entry = time.UnixMilli(entryMs).UTC()
		a.Exit = &exit
		return nil
	})
	if err != nil {
		return store.AttendanceRecord{}, err
	}
	return a, nil
}
