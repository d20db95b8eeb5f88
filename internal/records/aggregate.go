package records

import (
	"sort"
	"time"
)

// Rolling windows labelled "week" and "month" on the dashboards.  These are
// "now minus N days", not calendar-aligned periods.
const (
	WeekWindow  = 7 * 24 * time.Hour
	MonthWindow = 30 * 24 * time.Hour
)

// Summary bundles the statistics the views display.
type Summary struct {
	Total      int
	ByCategory map[string]int
	ThisMonth  int
	Today      int

	WeekHours  float64
	MonthHours float64

	// DaysWorked counts distinct dates with a closed record,
	// DaysWithEntries distinct dates with any record.
	DaysWorked      int
	DaysWithEntries int
}

// Summarize computes every aggregate over list relative to now.  Calendar
// boundaries use now's location.
func Summarize(list []Record, now time.Time) Summary {
	return Summary{
		Total:           len(list),
		ByCategory:      CountByCategory(list),
		ThisMonth:       CountInMonth(list, now),
		Today:           CountOnDay(list, now),
		WeekHours:       SumValueSince(list, now.Add(-WeekWindow)),
		MonthHours:      SumValueSince(list, now.Add(-MonthWindow)),
		DaysWorked:      len(DistinctDates(list, true, now.Location())),
		DaysWithEntries: len(DistinctDates(list, false, now.Location())),
	}
}

// CountByCategory counts records per distinct category value.
func CountByCategory(list []Record) map[string]int {
	out := make(map[string]int)
	for _, r := range list {
		out[r.Category]++
	}
	return out
}

// CountCategory counts records whose category equals value.
func CountCategory(list []Record, value string) int {
	n := 0
	for _, r := range list {
		if r.Category == value {
			n++
		}
	}
	return n
}

// CountInMonth counts records in [first day of now's month, now].
func CountInMonth(list []Record, now time.Time) int {
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())

	n := 0
	for _, r := range list {
		if !r.Timestamp.Valid {
			continue
		}
		t := r.Timestamp.Time
		if !t.Before(first) && !t.After(now) {
			n++
		}
	}
	return n
}

// CountOnDay counts records on the same calendar date as day, compared in
// day's location.
func CountOnDay(list []Record, day time.Time) int {
	key := day.Format(DateLayout)
	n := 0
	for _, r := range list {
		if r.Timestamp.Valid && r.Timestamp.Time.In(day.Location()).Format(DateLayout) == key {
			n++
		}
	}
	return n
}

// SumValueSince sums Value over records at or after periodStart that carry
// a value.
func SumValueSince(list []Record, periodStart time.Time) float64 {
	var sum float64
	for _, r := range list {
		if r.Value == nil || !r.Timestamp.Valid {
			continue
		}
		if r.Timestamp.Time.Before(periodStart) {
			continue
		}
		sum += *r.Value
	}
	return sum
}

// DistinctDates returns the sorted set of calendar dates (YYYY-MM-DD in loc)
// present in list.  With requireClosed only records that carry a value
// count, i.e. days actually worked rather than days with any entry.
func DistinctDates(list []Record, requireClosed bool, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	seen := make(map[string]struct{})
	for _, r := range list {
		if !r.Timestamp.Valid {
			continue
		}
		if requireClosed && r.Value == nil {
			continue
		}
		seen[r.Timestamp.Time.In(loc).Format(DateLayout)] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
