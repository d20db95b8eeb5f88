package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BrandonDHaskell/Portunus/condo/internal/apiclient"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
	"github.com/BrandonDHaskell/Portunus/condo/internal/records"
	"github.com/BrandonDHaskell/Portunus/condo/internal/views"
)

var now = time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

func newTestRenderer() (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r := New(&buf, time.UTC)
	r.now = func() time.Time { return now }
	return r, &buf
}

func rec(ts, category string, labels map[string]string) records.Record {
	r := records.NewRecord(ts, category, time.UTC)
	r.Labels = labels
	return r
}

func TestSnapshot_AccessHistory(t *testing.T) {
	r, buf := newTestRenderer()
	list := []records.Record{
		rec("2024-03-13T08:00:00", "GRANTED", map[string]string{"door": "Main Lobby"}),
		rec("not-a-time", "DENIED", map[string]string{"door": "Car Park", "reason": "no_match"}),
	}
	r.Snapshot(views.Snapshot{
		Kind:     views.KindAccessHistory,
		Result:   apiclient.Result{OK: true},
		Records:  list,
		Filtered: list,
		Summary:  records.Summarize(list, now),
	})

	out := buf.String()
	assert.Contains(t, out, "Access History")
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "Granted: 1")
	assert.Contains(t, out, "Today: 1")
	assert.Contains(t, out, "2024-03-13 08:00")
	assert.Contains(t, out, "not-a-time")
	assert.Contains(t, out, "no_match")
	assert.NotContains(t, out, "\x1b[", "buffers get plain text")
}

func TestSnapshot_Failure(t *testing.T) {
	r, buf := newTestRenderer()
	r.Snapshot(views.Snapshot{Kind: views.KindAlerts, Result: apiclient.Result{Message: "backend unavailable"}})

	assert.Equal(t, "✗ alerts: backend unavailable\n", buf.String())
}

func TestSnapshot_EmptyList(t *testing.T) {
	r, buf := newTestRenderer()
	r.Snapshot(views.Snapshot{Kind: views.KindVisitors, Result: apiclient.Result{OK: true}})

	assert.Contains(t, buf.String(), "No records.")
}

func TestAlerts_RelativeTime(t *testing.T) {
	r, buf := newTestRenderer()
	a := rec("2024-03-13T12:00:00", "UNREAD", map[string]string{"description": "Failed face attempt"})
	a.ID = "7"
	r.Alerts([]records.Record{a})

	out := buf.String()
	assert.Contains(t, out, "3 hours ago")
	assert.Contains(t, out, "Failed face attempt")
	assert.Contains(t, out, "UNREAD")
}

func TestSnapshot_AttendanceOpenInterval(t *testing.T) {
	r, buf := newTestRenderer()
	closed := rec("2024-03-12T09:00:00", "", map[string]string{"exit_time": "2024-03-12T17:30:00", "location": "Lobby"})
	closed.Closed = true
	closed.Value = records.Float(8.5)
	open := rec("2024-03-13T09:00:00", "", nil)
	list := []records.Record{open, closed}

	r.Snapshot(views.Snapshot{
		Kind:     views.KindAttendance,
		Result:   apiclient.Result{OK: true},
		Filtered: list,
		Summary:  records.Summarize(list, now),
	})

	out := buf.String()
	assert.Contains(t, out, "in progress")
	assert.Contains(t, out, "2024-03-12 17:30")
	assert.Contains(t, out, "Hours this week: 8.5h")
	assert.Contains(t, out, "Days worked: 1")
}

func TestSnapshot_SecurityViews(t *testing.T) {
	r, buf := newTestRenderer()
	access := []records.Record{
		rec("2024-03-13T14:00:00", "DENIED", map[string]string{"person_name": "Unknown", "person_type": "UNKNOWN", "access_point": "Car Park"}),
		rec("2024-03-12T08:00:00", "GRANTED", map[string]string{"person_name": "John Tan", "person_type": "RESIDENT", "access_point": "Main Lobby"}),
	}
	visitors := []records.Record{
		rec("2024-03-13T10:00:00", "IN_BUILDING", map[string]string{"visitor_name": "Mary Lee", "visiting_unit": "B-12-05", "expected_exit": "2024-03-13T18:00:00"}),
	}
	r.Dashboard([]views.Snapshot{
		{Kind: views.KindSecurityAccess, Result: apiclient.Result{OK: true}, Filtered: access, Summary: records.Summarize(access, now)},
		{Kind: views.KindSecurityVisitors, Result: apiclient.Result{OK: true}, Filtered: visitors, Summary: records.Summarize(visitors, now)},
	})

	out := buf.String()
	assert.Contains(t, out, "Security Access")
	assert.Contains(t, out, "Granted: 1")
	assert.Contains(t, out, "Denied: 1")
	assert.Contains(t, out, "Today: 1")
	assert.Contains(t, out, "Car Park")
	assert.Contains(t, out, "Security Visitors")
	assert.Contains(t, out, "In building: 1")
	assert.Contains(t, out, "2024-03-13 18:00")
}

func TestStatistics(t *testing.T) {
	r, buf := newTestRenderer()
	r.Statistics(types.SecurityStatistics{TotalResidents: 1250, ActiveVisitors: 3, TodayAccessCount: 42, AlertsToday: 1})

	out := buf.String()
	assert.Contains(t, out, "Residents: 1,250")
	assert.Contains(t, out, "Visitors in building: 3")
	assert.Contains(t, out, "Access today: 42")
	assert.Contains(t, out, "Unread alerts today: 1")
}

func TestSchedule_DayTotals(t *testing.T) {
	r, buf := newTestRenderer()
	list := []records.Record{
		rec("2024-03-11", "", map[string]string{"shift_date": "2024-03-11", "shift_start": "09:00", "shift_end": "13:00", "task_description": "Lobby"}),
		rec("2024-03-11", "", map[string]string{"shift_date": "2024-03-11", "shift_start": "14:00", "shift_end": "14:30", "task_description": "Handover"}),
		rec("2024-03-12", "", map[string]string{"shift_date": "2024-03-12", "shift_start": "22:00", "shift_end": "oops"}),
	}
	r.Schedule(views.ScheduleDays(list))

	out := buf.String()
	assert.Contains(t, out, "4h")
	assert.Contains(t, out, "0h 30m")
	assert.Contains(t, out, "4h 30m")
	assert.Contains(t, out, "invalid")
	assert.Less(t, strings.Index(out, "2024-03-11"), strings.Index(out, "2024-03-12"))
}

func TestBadge(t *testing.T) {
	r, _ := newTestRenderer()
	assert.Equal(t, "GRANTED", r.Badge("GRANTED"))
	assert.Equal(t, "-", r.Badge(""))
	assert.Equal(t, "WEIRD", r.Badge("WEIRD"))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Access History", title(views.KindAccessHistory))
	assert.Equal(t, "Alerts", title(views.KindAlerts))
}
