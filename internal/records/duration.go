package records

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidClock reports a time of day that is not a valid HH:MM[:SS].
var ErrInvalidClock = errors.New("time of day must be HH:MM or HH:MM:SS")

// ShiftDuration returns end-start for two times of day on a common date.
// An end strictly before start means the shift crosses midnight and 24h is
// added.  Equal times are a zero-length shift, not a full day.
func ShiftDuration(start, end string) (time.Duration, error) {
	s, err := parseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := parseClock(end)
	if err != nil {
		return 0, err
	}

	d := e - s
	if d < 0 {
		d += 24 * time.Hour
	}
	return d, nil
}

// FormatShift renders d as whole hours plus remaining minutes, dropping the
// minutes when they are zero: "8h", "0h 30m".
func FormatShift(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	limits := []int{23, 59, 59}
	units := []time.Duration{time.Hour, time.Minute, time.Second}

	var d time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		d += time.Duration(n) * units[i]
	}
	return d, nil
}
