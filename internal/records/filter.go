package records

import (
	"fmt"
	"strings"
	"time"
)

// Constraints narrows a record list.  Nil / empty fields impose no
// restriction; all supplied constraints must hold.
type Constraints struct {
	// From keeps records at or after StartOfDay(From), so the whole
	// selected day is included.
	From *time.Time

	// To keeps records at or before EndOfDay(To), so the whole selected day
	// is included.
	To *time.Time

	// Status is an exact match against Record.Category.
	Status string
}

// IsZero reports whether c imposes no restriction.
func (c Constraints) IsZero() bool {
	return c.From == nil && c.To == nil && c.Status == ""
}

// Filter returns the records that satisfy every constraint, preserving
// input order.  The input slice is not modified.
//
// Records with an unparseable timestamp are never excluded by a date bound.
func Filter(list []Record, c Constraints) []Record {
	out := make([]Record, 0, len(list))

	var from, to time.Time
	if c.From != nil {
		from = StartOfDay(*c.From)
	}
	if c.To != nil {
		to = EndOfDay(*c.To)
	}

	for _, r := range list {
		if c.From != nil && r.Timestamp.Valid && r.Timestamp.Time.Before(from) {
			continue
		}
		if c.To != nil && r.Timestamp.Valid && r.Timestamp.Time.After(to) {
			continue
		}
		if c.Status != "" && r.Category != c.Status {
			continue
		}
		out = append(out, r)
	}
	return out
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar date in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// ParseDay parses a YYYY-MM-DD form value as the start of that day in loc.
// An empty string yields nil.
func ParseDay(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("parse day %q: %w", s, err)
	}
	return &t, nil
}
