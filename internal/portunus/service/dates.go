package service

import (
	"strings"
	"time"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

// WireLayout is how timestamps leave the server: local wall-clock time
// without a zone, interpreted by clients in the site's time zone.
const WireLayout = "2006-01-02T15:04:05"

const dateLayout = "2006-01-02"

// dayRange turns optional start_date / end_date query values into an
// inclusive time range covering whole days in loc.
func dayRange(fromDate, toDate string, loc *time.Location) (store.TimeRange, error) {
	var r store.TimeRange

	if s := strings.TrimSpace(fromDate); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return r, invalid("start_date %q is not YYYY-MM-DD", s)
		}
		r.From = &t
	}
	if s := strings.TrimSpace(toDate); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return r, invalid("end_date %q is not YYYY-MM-DD", s)
		}
		end := t.AddDate(0, 0, 1).Add(-time.Millisecond)
		r.To = &end
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return r, invalid("end_date is before start_date")
	}
	return r, nil
}

func wireTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(WireLayout)
}
