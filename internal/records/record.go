// Package records holds the in-memory record pipeline shared by every view:
// filtering, aggregation, date grouping and shift duration arithmetic.
//
// Every function here is a pure transformation over a snapshot slice.  None
// of them retain state, suspend, or modify their input.
package records

import (
	"strings"
	"time"
)

// Timestamp keeps the raw wire value next to its parsed form.  A record
// whose timestamp cannot be parsed still flows through the pipeline with
// Valid=false.
type Timestamp struct {
	Raw   string
	Time  time.Time
	Valid bool
}

// Record is a single timestamped event: an access attempt, an attendance
// punch, an alert, a visitor invitation.
type Record struct {
	ID        string
	Timestamp Timestamp
	Category  string

	// Value is set only for closed intervals (e.g. duration_hours once an
	// exit has been recorded).
	Value  *float64
	Closed bool

	Labels map[string]string
}

// Label returns the named display label or def when absent or blank.
func (r Record) Label(name, def string) string {
	if v, ok := r.Labels[name]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// Accepted timestamp layouts, tried in order.  Layouts without a zone are
// interpreted in the caller's location.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

// DateLayout is the calendar-date form used for form inputs, query
// parameters and date keys.
const DateLayout = "2006-01-02"

// ParseTimestamp parses s in loc.  A nil loc means time.Local.
func ParseTimestamp(s string, loc *time.Location) Timestamp {
	if loc == nil {
		loc = time.Local
	}
	ts := Timestamp{Raw: s}
	s = strings.TrimSpace(s)
	if s == "" {
		return ts
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			ts.Time = t
			ts.Valid = true
			return ts
		}
	}
	return ts
}

// NewRecord is a convenience constructor for tests and fixtures.
func NewRecord(timestamp, category string, loc *time.Location) Record {
	return Record{
		Timestamp: ParseTimestamp(timestamp, loc),
		Category:  category,
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
