package views

import (
	"time"

	"github.com/BrandonDHaskell/Portunus/condo/internal/records"
)

// Shift is one schedule entry with its computed length.  Err is set when
// the start or end time is malformed.
type Shift struct {
	Record   records.Record
	Start    string
	End      string
	Task     string
	Duration time.Duration
	Err      error
}

// ScheduleDays groups schedule records by shift date, earliest first.
func ScheduleDays(list []records.Record) []records.Group[Shift] {
	shifts := make([]Shift, 0, len(list))
	for _, r := range list {
		s := Shift{
			Record: r,
			Start:  r.Label("shift_start", ""),
			End:    r.Label("shift_end", ""),
			Task:   r.Label("task_description", ""),
		}
		s.Duration, s.Err = records.ShiftDuration(s.Start, s.End)
		shifts = append(shifts, s)
	}
	return records.GroupByDate(shifts, shiftDate)
}

func shiftDate(s Shift) string {
	if d := s.Record.Label("shift_date", ""); d != "" {
		return d
	}
	if s.Record.Timestamp.Valid {
		return s.Record.Timestamp.Time.Format(records.DateLayout)
	}
	return s.Record.Timestamp.Raw
}

// DayTotal sums the valid shift durations of one day.
func DayTotal(g records.Group[Shift]) time.Duration {
	var total time.Duration
	for _, s := range g.Items {
		if s.Err == nil {
			total += s.Duration
		}
	}
	return total
}
