package views

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/Portunus/condo/internal/apiclient"
	"github.com/BrandonDHaskell/Portunus/condo/internal/logger"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
	"github.com/BrandonDHaskell/Portunus/condo/internal/session"
)

var fixedNow = time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

var resident = session.Session{ID: 1, Role: types.RoleResident, Token: "rtok"}
var staff = session.Session{ID: 4, Role: types.RoleStaff, Token: "stok"}
var guard = session.Session{ID: 9, Role: types.RoleSecurity, Token: "gtok"}

// fakeBackend serves canned envelopes by path and records requests.
type fakeBackend struct {
	mu       sync.Mutex
	bodies   map[string]any
	status   map[string]int
	requests []*http.Request
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(context.Background()))
	body, ok := f.bodies[r.URL.Path]
	status := f.status[r.URL.Path]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case status != 0:
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "backend unavailable"})
	case !ok:
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	default:
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (f *fakeBackend) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		out = append(out, r.Method+" "+r.URL.Path)
	}
	return out
}

func newLoader(t *testing.T, fb *fakeBackend) *Loader {
	t.Helper()
	ts := httptest.NewServer(fb)
	t.Cleanup(ts.Close)

	c, err := apiclient.New(apiclient.Config{BaseURL: ts.URL, Logger: logger.Nop()})
	require.NoError(t, err)

	l := NewLoader(c, LoaderConfig{Location: time.UTC, Logger: logger.Nop()})
	l.now = func() time.Time { return fixedNow }
	return l
}

func historyBackend() *fakeBackend {
	return &fakeBackend{bodies: map[string]any{
		"/api/resident/1/access-history": map[string]any{
			"resident_id": 1,
			"records": []map[string]any{
				{"timestamp": "2024-03-13T08:00:00", "door": "Main Lobby", "result": "GRANTED"},
				{"timestamp": "2024-03-12T21:10:00", "door": "Car Park", "result": "DENIED", "reason": "no_match"},
				{"timestamp": "2024-02-28T10:00:00", "door": "Main Lobby", "result": "GRANTED"},
				{"timestamp": "garbage", "door": "Gym", "result": "DENIED"},
			},
		},
	}}
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_AccessHistoryPipeline(t *testing.T) {
	fb := historyBackend()
	l := newLoader(t, fb)

	snap, err := l.Load(context.Background(), resident, KindAccessHistory, Query{From: "2024-03-01"})
	require.NoError(t, err)
	assert.True(t, snap.Result.OK)
	assert.Len(t, snap.Records, 4)
	assert.Equal(t, fixedNow, snap.FetchedAt)

	// The February record is filtered out; the unparseable one is kept.
	require.Len(t, snap.Filtered, 3)
	assert.Equal(t, "Main Lobby", snap.Filtered[0].Label("door", ""))
	assert.Equal(t, "no_match", snap.Filtered[1].Label("reason", ""))
	assert.False(t, snap.Filtered[2].Timestamp.Valid)

	assert.Equal(t, 3, snap.Summary.Total)
	assert.Equal(t, map[string]int{"GRANTED": 1, "DENIED": 2}, snap.Summary.ByCategory)
	assert.Equal(t, 2, snap.Summary.ThisMonth)
	assert.Equal(t, 1, snap.Summary.Today)

	require.Len(t, fb.requests, 1)
	req := fb.requests[0]
	assert.Equal(t, "Bearer rtok", req.Header.Get("Authorization"))
	assert.Equal(t, "2024-03-01", req.URL.Query().Get("start_date"))
}

func TestLoad_StatusFilter(t *testing.T) {
	l := newLoader(t, historyBackend())

	snap, err := l.Load(context.Background(), resident, KindAccessHistory, Query{Status: "DENIED"})
	require.NoError(t, err)
	assert.Len(t, snap.Filtered, 2)
	for _, r := range snap.Filtered {
		assert.Equal(t, "DENIED", r.Category)
	}
}

func TestLoad_AttendanceValuesAndClosed(t *testing.T) {
	fb := &fakeBackend{bodies: map[string]any{
		"/api/staff/4/attendance": map[string]any{
			"records": []map[string]any{
				{"attendance_id": 2, "entry_time": "2024-03-13T09:00:00", "exit_time": nil, "duration_hours": nil},
				{"attendance_id": 1, "entry_time": "2024-03-12T09:00:00", "exit_time": "2024-03-12T17:30:00", "duration_hours": 8.5},
				{"attendance_id": 0, "entry_time": "2024-01-02T09:00:00", "exit_time": "2024-01-02T13:00:00", "duration_hours": "4"},
			},
		},
	}}
	l := newLoader(t, fb)

	snap, err := l.Load(context.Background(), staff, KindAttendance, Query{})
	require.NoError(t, err)
	require.Len(t, snap.Records, 3)

	open, closed := snap.Records[0], snap.Records[1]
	assert.Equal(t, "2", open.ID)
	assert.False(t, open.Closed)
	assert.Nil(t, open.Value)
	assert.True(t, closed.Closed)
	require.NotNil(t, closed.Value)
	assert.InDelta(t, 8.5, *closed.Value, 1e-9)

	assert.InDelta(t, 8.5, snap.Summary.WeekHours, 1e-9)
	assert.InDelta(t, 8.5, snap.Summary.MonthHours, 1e-9)
	assert.Equal(t, 2, snap.Summary.DaysWorked)
	assert.Equal(t, 3, snap.Summary.DaysWithEntries)
}

func TestLoad_FetchFailureZeroesSnapshot(t *testing.T) {
	fb := &fakeBackend{status: map[string]int{"/api/resident/1/alerts": http.StatusInternalServerError}}
	l := newLoader(t, fb)

	snap, err := l.Load(context.Background(), resident, KindAlerts, Query{})
	require.Error(t, err)
	assert.False(t, snap.Result.OK)
	assert.Equal(t, "backend unavailable", snap.Result.Message)
	assert.Empty(t, snap.Records)
	assert.Empty(t, snap.Filtered)
	assert.Zero(t, snap.Summary.Total)
}

func TestLoad_RejectsRoleAndBadInput(t *testing.T) {
	fb := historyBackend()
	l := newLoader(t, fb)
	ctx := context.Background()

	_, err := l.Load(ctx, staff, KindAccessHistory, Query{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = l.Load(ctx, resident, Kind("bogus"), Query{})
	assert.ErrorIs(t, err, ErrUnknownView)

	snap, err := l.Load(ctx, resident, KindAccessHistory, Query{From: "13/03/2024"})
	require.Error(t, err)
	assert.False(t, snap.Result.OK)

	assert.Empty(t, fb.paths(), "nothing should be fetched")
}

// ── Dashboard ────────────────────────────────────────────────────────────────

func TestDashboard_LoadsEveryResidentView(t *testing.T) {
	fb := historyBackend()
	fb.bodies["/api/resident/1/alerts"] = map[string]any{"alerts": []map[string]any{
		{"alert_id": 7, "timestamp": "2024-03-12T21:10:00", "description": "Failed face attempt", "status": "UNREAD"},
	}}
	fb.status = map[string]int{"/api/resident/1/visitors": http.StatusBadGateway}
	l := newLoader(t, fb)

	snaps, err := l.Dashboard(context.Background(), resident)
	require.Error(t, err, "the visitors failure is reported")
	require.Len(t, snaps, 3)

	got := map[Kind]bool{}
	for _, s := range snaps {
		got[s.Kind] = s.Result.OK
	}
	assert.Equal(t, map[Kind]bool{KindAccessHistory: true, KindAlerts: true, KindVisitors: false}, got)
	assert.ElementsMatch(t, []string{
		"GET /api/resident/1/access-history",
		"GET /api/resident/1/alerts",
		"GET /api/resident/1/visitors",
	}, fb.paths())
}

func TestDashboard_ForbiddenKindFetchesNothing(t *testing.T) {
	fb := historyBackend()
	l := newLoader(t, fb)

	_, err := l.Dashboard(context.Background(), resident, KindAccessHistory, KindSchedule)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, fb.paths())
}

func securityBackend() *fakeBackend {
	return &fakeBackend{bodies: map[string]any{
		"/api/security/recent-access": map[string]any{"logs": []map[string]any{
			{"log_id": 3, "access_time": "2024-03-13T14:00:00", "person_name": "Unknown", "person_type": "UNKNOWN", "access_point": "Car Park", "access_result": "DENIED"},
			{"log_id": 2, "access_time": "2024-03-13T08:00:00", "person_name": "John Tan", "person_type": "RESIDENT", "access_point": "Main Lobby", "access_result": "GRANTED"},
			{"log_id": 1, "access_time": "2024-03-12T21:10:00", "person_name": "John Tan", "person_type": "RESIDENT", "access_point": "Main Lobby", "access_result": "GRANTED"},
		}},
		"/api/security/current-visitors": map[string]any{"visitors": []map[string]any{
			{"visitor_id": 5, "visitor_name": "Mary Lee", "visiting_unit": "B-12-05", "entry_time": "2024-03-13T10:00:00", "expected_exit": "2024-03-13T18:00:00", "status": "IN_BUILDING"},
		}},
		"/api/staff/9/attendance": map[string]any{"records": []map[string]any{}},
		"/api/staff/9/schedule":   map[string]any{"schedules": []map[string]any{}},
	}}
}

func TestLoad_SecurityAccessSendsLimitAndDates(t *testing.T) {
	fb := securityBackend()
	l := newLoader(t, fb)

	snap, err := l.Load(context.Background(), guard, KindSecurityAccess, Query{From: "2024-03-13"})
	require.NoError(t, err)
	assert.Len(t, snap.Records, 3)
	require.Len(t, snap.Filtered, 2)
	assert.Equal(t, "Unknown", snap.Filtered[0].Label("person_name", ""))
	assert.Equal(t, "Car Park", snap.Filtered[0].Label("access_point", ""))
	assert.Equal(t, 2, snap.Summary.Today)
	assert.Equal(t, map[string]int{"DENIED": 1, "GRANTED": 1}, snap.Summary.ByCategory)

	require.Len(t, fb.requests, 1)
	q := fb.requests[0].URL.Query()
	assert.Equal(t, "200", q.Get("limit"))
	assert.Equal(t, "2024-03-13", q.Get("start_date"))

	_, err = l.Load(context.Background(), staff, KindSecurityAccess, Query{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDashboard_SecurityViews(t *testing.T) {
	fb := securityBackend()
	l := newLoader(t, fb)

	snaps, err := l.Dashboard(context.Background(), guard)
	require.NoError(t, err)
	require.Len(t, snaps, 4)

	byKind := map[Kind]Snapshot{}
	for _, s := range snaps {
		byKind[s.Kind] = s
	}
	assert.Equal(t, 3, byKind[KindSecurityAccess].Summary.Total)
	visitors := byKind[KindSecurityVisitors]
	require.Len(t, visitors.Records, 1)
	assert.Equal(t, "IN_BUILDING", visitors.Records[0].Category)
	assert.Equal(t, "B-12-05", visitors.Records[0].Label("visiting_unit", ""))
}

// ── AlertBox ─────────────────────────────────────────────────────────────────

func alertsBackend() *fakeBackend {
	return &fakeBackend{bodies: map[string]any{
		"/api/resident/1/alerts": map[string]any{"alerts": []map[string]any{
			{"alert_id": 1, "timestamp": "2024-03-12T21:10:00", "description": "a", "status": "UNREAD"},
			{"alert_id": 2, "timestamp": "2024-03-11T21:10:00", "description": "b", "status": "READ"},
			{"alert_id": 3, "timestamp": "2024-03-10T21:10:00", "description": "c", "status": "UNREAD"},
		}},
		"/api/resident/1/alerts/1/read": map[string]any{"message": "ok"},
		"/api/resident/1/alerts/3/read": map[string]any{"message": "ok"},
	}}
}

func TestAlertBox_LocalOnly(t *testing.T) {
	fb := alertsBackend()
	l := newLoader(t, fb)
	ctx := context.Background()

	snap, err := l.Load(ctx, resident, KindAlerts, Query{})
	require.NoError(t, err)
	box := l.AlertBox(snap, resident, false)
	assert.Equal(t, 2, box.Unread())

	require.NoError(t, box.MarkRead(ctx, "1"))
	require.NoError(t, box.MarkRead(ctx, "1"))
	assert.Equal(t, 1, box.Unread())
	assert.ErrorIs(t, box.MarkRead(ctx, "99"), ErrNoSuchAlert)

	// The snapshot is untouched.
	assert.Equal(t, types.AlertUnread, snap.Records[0].Category)

	assert.Equal(t, 2, box.ClearRead())
	require.Len(t, box.Alerts(), 1)
	assert.Equal(t, "3", box.Alerts()[0].ID)

	assert.Equal(t, []string{"GET /api/resident/1/alerts"}, fb.paths())
}

func TestAlertBox_Persist(t *testing.T) {
	fb := alertsBackend()
	l := newLoader(t, fb)
	ctx := context.Background()

	snap, err := l.Load(ctx, resident, KindAlerts, Query{})
	require.NoError(t, err)
	box := l.AlertBox(snap, resident, true)

	n, err := box.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, box.Unread())

	assert.Equal(t, []string{
		"GET /api/resident/1/alerts",
		"POST /api/resident/1/alerts/1/read",
		"POST /api/resident/1/alerts/3/read",
	}, fb.paths())
}

func TestAlertBox_PersistFailureKeepsLocalState(t *testing.T) {
	fb := alertsBackend()
	fb.status = map[string]int{"/api/resident/1/alerts/1/read": http.StatusInternalServerError}
	l := newLoader(t, fb)
	ctx := context.Background()

	snap, err := l.Load(ctx, resident, KindAlerts, Query{})
	require.NoError(t, err)
	box := l.AlertBox(snap, resident, true)

	require.Error(t, box.MarkRead(ctx, "1"))
	assert.Equal(t, 2, box.Unread())
}

// ── Schedule ─────────────────────────────────────────────────────────────────

func TestScheduleDays(t *testing.T) {
	fb := &fakeBackend{bodies: map[string]any{
		"/api/staff/4/schedule": map[string]any{"schedules": []map[string]any{
			{"schedule_id": 3, "shift_date": "2024-03-12", "shift_start": "22:00", "shift_end": "06:00", "task_description": "Night patrol"},
			{"schedule_id": 1, "shift_date": "2024-03-11", "shift_start": "09:00", "shift_end": "17:00", "task_description": "Lobby"},
			{"schedule_id": 2, "shift_date": "2024-03-11", "shift_start": "18:00", "shift_end": "bad", "task_description": "Overtime"},
		}},
	}}
	l := newLoader(t, fb)

	snap, err := l.Load(context.Background(), staff, KindSchedule, Query{From: "2024-03-11", To: "2024-03-12"})
	require.NoError(t, err)

	days := ScheduleDays(snap.Filtered)
	require.Len(t, days, 2)

	type row struct {
		Date  string
		Tasks []string
		Total time.Duration
	}
	var got []row
	for _, d := range days {
		r := row{Date: d.Date, Total: DayTotal(d)}
		for _, s := range d.Items {
			r.Tasks = append(r.Tasks, s.Task)
		}
		got = append(got, r)
	}
	want := []row{
		{Date: "2024-03-11", Tasks: []string{"Lobby", "Overtime"}, Total: 8 * time.Hour},
		{Date: "2024-03-12", Tasks: []string{"Night patrol"}, Total: 8 * time.Hour},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("schedule days mismatch (-want +got):\n%s", diff)
	}
	assert.Error(t, days[0].Items[1].Err)
}

// ── Table ────────────────────────────────────────────────────────────────────

func TestTable_Kinds(t *testing.T) {
	tbl := DefaultTable()
	assert.Equal(t, []Kind{KindAccessHistory, KindAlerts, KindVisitors}, tbl.Kinds(types.RoleResident))
	assert.Equal(t, []Kind{KindAttendance, KindSchedule}, tbl.Kinds(types.RoleStaff))
	assert.Equal(t, []Kind{KindAttendance, KindSchedule, KindSecurityAccess, KindSecurityVisitors}, tbl.Kinds(types.RoleSecurity))
	assert.Empty(t, tbl.Kinds(types.RoleVisitor))
}

func TestLoadTable_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
views:
  alerts:
    path: /v2/residents/{id}/alerts
  security-access:
    params:
      limit: "50"
      door: lobby
  parcels:
    roles: [RESIDENT]
    path: /api/resident/{id}/parcels
    key: parcels
    fields:
      id: parcel_id
      timestamp: arrived_at
      category: status
`), 0o600))

	tbl, err := LoadTable(path)
	require.NoError(t, err)

	alerts := tbl[KindAlerts]
	assert.Equal(t, "/v2/residents/{id}/alerts", alerts.Path)
	assert.Equal(t, "alerts", alerts.Key)
	assert.Equal(t, "alert_id", alerts.Fields.ID)
	assert.Equal(t, map[string]string{"limit": "50", "door": "lobby"}, tbl[KindSecurityAccess].Params)
	assert.Equal(t, map[string]string{"limit": "200"}, DefaultTable()[KindSecurityAccess].Params)

	assert.Contains(t, tbl.Kinds(types.RoleResident), Kind("parcels"))

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)
}

func TestLoadTable_RejectsIncompleteView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yaml")
	require.NoError(t, os.WriteFile(path, []byte("views:\n  parcels:\n    path: /x\n"), 0o600))

	_, err := LoadTable(path)
	assert.Error(t, err)
}

func TestToRecords_Conversion(t *testing.T) {
	got := toRecords([]map[string]any{
		{"id": 12.0, "ts": "2024-03-13", "cat": true, "v": "not a number", "tags": []any{"x"}},
	}, Fields{ID: "id", Timestamp: "ts", Category: "cat", Value: "v", Labels: []string{"tags", "absent"}}, time.UTC)

	require.Len(t, got, 1)
	assert.Equal(t, "12", got[0].ID)
	assert.Equal(t, "true", got[0].Category)
	assert.Nil(t, got[0].Value)
	assert.True(t, got[0].Timestamp.Valid)
	assert.Equal(t, map[string]string{"tags": `["x"]`, "absent": ""}, got[0].Labels)
}
