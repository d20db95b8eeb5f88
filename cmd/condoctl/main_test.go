package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BrandonDHaskell/Portunus/condo/internal/httpapi"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/service"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store/memory"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

type backend struct {
	alerts   *memory.AlertStore
	visitors *memory.VisitorStore
}

// setup starts the dev API over memory stores and writes a config file
// pointing condoctl at it.
func setup(t *testing.T) (string, *backend) {
	t.Helper()
	t.Setenv("CONDO_API_URL", "")
	t.Setenv("CONDO_TIMEZONE", "")

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	rid, sid, guard := int64(1), int64(4), int64(7)
	users := memory.NewUserStore(
		store.UserRecord{UserID: 10, Username: "john_resident", FullName: "John Lim", PasswordHash: hash, Role: types.RoleResident, ResidentID: &rid},
		store.UserRecord{UserID: 11, Username: "jane_staff", FullName: "Jane Tan", PasswordHash: hash, Role: types.RoleStaff, StaffID: &sid},
		store.UserRecord{UserID: 12, Username: "sam_security", FullName: "Sam Wong", PasswordHash: hash, Role: types.RoleSecurity, StaffID: &guard},
	)

	ctx := context.Background()
	now := time.Now().UTC()
	events := memory.NewAccessEventStore(map[string]string{"door-001": "Main Lobby"})
	for i, granted := range []bool{true, false, true} {
		reason := service.ReasonResidentAllowed
		if !granted {
			reason = service.ReasonResidentDisabled
		}
		require.NoError(t, events.RecordEvent(ctx, store.AccessEventRecord{
			ModuleID:   "door-001",
			ResidentID: &rid,
			Granted:    granted,
			Reason:     reason,
			DecidedAt:  now.Add(-time.Duration(i+1) * time.Hour),
		}))
	}

	b := &backend{alerts: memory.NewAlertStore(), visitors: memory.NewVisitorStore()}
	_, err = b.alerts.CreateAlert(ctx, 1, "Failed face attempt at Car Park", now.Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = b.alerts.CreateAlert(ctx, 1, "Door held open", now.Add(-time.Hour))
	require.NoError(t, err)

	today := now.Format("2006-01-02")
	staff := memory.NewStaffStore(nil, []store.ScheduleRecord{
		{ScheduleID: 1, StaffID: 4, ShiftDate: today, ShiftStart: "22:00", ShiftEnd: "06:00", TaskDescription: "Night patrol"},
	})

	logger := zerolog.Nop()
	registry := service.NewModuleRegistry(memory.NewDoorModuleStore(memory.ActiveModule("door-001", "Main Lobby")), logger)
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:        logger,
		AccessService: service.NewAccessService(registry, service.AccessPolicy{AllowAll: true}, events, b.alerts, logger),
		AuthService:   service.NewAuthService(users, service.AuthConfig{Secret: []byte("test-secret")}, logger),
		ResidentService: service.NewResidentService(events, b.alerts, b.visitors,
			service.ResidentConfig{FaceDir: t.TempDir(), Location: time.UTC}, logger),
		StaffService:    service.NewStaffService(staff, time.UTC),
		SecurityService: service.NewSecurityService(events, b.alerts, b.visitors, users, time.UTC, logger),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"api_url: "+ts.URL+"\n"+
			"timezone: UTC\n"+
			"logging:\n  level: error\n  output: stderr\n"), 0o600))
	return cfgPath, b
}

func execute(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_ResidentFlow(t *testing.T) {
	cfg, b := setup(t)

	_, err := execute(t, cfg, "", "history")
	require.ErrorContains(t, err, "not logged in")

	_, err = execute(t, cfg, "", "login", "-u", "john_resident", "-p", "nope")
	require.Error(t, err)

	out, err := execute(t, cfg, "password123\n", "login", "-u", "john_resident")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as John Lim (RESIDENT)")

	out, err = execute(t, cfg, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "john_resident")
	assert.Contains(t, out, "ID:    1")

	out, err = execute(t, cfg, "", "history", "--status", "DENIED")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 1")
	assert.Contains(t, out, "resident_not_allowed")

	out, err = execute(t, cfg, "", "alerts")
	require.NoError(t, err)
	assert.Contains(t, out, "Unread: 2")
	assert.Contains(t, out, "Door held open")

	// Without --persist the server keeps the alert unread.
	out, err = execute(t, cfg, "", "alerts", "read", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1 unread")
	recs, err := b.alerts.ListAlerts(context.Background(), 1)
	require.NoError(t, err)
	for _, a := range recs {
		assert.False(t, a.Read)
	}

	out, err = execute(t, cfg, "", "alerts", "read-all", "--persist")
	require.NoError(t, err)
	assert.Contains(t, out, "2 alert(s) marked as read.")
	recs, err = b.alerts.ListAlerts(context.Background(), 1)
	require.NoError(t, err)
	for _, a := range recs {
		assert.True(t, a.Read)
	}

	out, err = execute(t, cfg, "", "alerts", "clear-read")
	require.NoError(t, err)
	assert.Contains(t, out, "2 read alert(s) cleared.")

	out, err = execute(t, cfg, "", "visitors", "add",
		"--name", "Mary Lee", "--contact", "98765432", "--unit", "B-12-05",
		"--start", "2025-11-21T10:00", "--end", "2025-11-21T12:00")
	require.NoError(t, err)
	assert.Contains(t, out, "created (PENDING)")

	vs, err := b.visitors.ListVisitors(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	vid := vs[0].VisitorID
	id := strconv.FormatInt(vid, 10)

	out, err = execute(t, cfg, "", "visitors", "approve", id)
	require.NoError(t, err)
	assert.Contains(t, out, "is now APPROVED")

	img := filepath.Join(t.TempDir(), "face.png")
	require.NoError(t, os.WriteFile(img, append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...), 0o600))
	out, err = execute(t, cfg, "", "visitors", "upload-face", id, img)
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded face.png")

	txt := filepath.Join(t.TempDir(), "face.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o600))
	_, err = execute(t, cfg, "", "visitors", "upload-face", id, txt)
	require.ErrorContains(t, err, "unsupported image type")

	out, err = execute(t, cfg, "", "visitors")
	require.NoError(t, err)
	assert.Contains(t, out, "Mary Lee")
	assert.Contains(t, out, "APPROVED")

	out, err = execute(t, cfg, "", "visitors", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = execute(t, cfg, "", "attendance")
	require.ErrorContains(t, err, "not available")

	out, err = execute(t, cfg, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")

	_, err = execute(t, cfg, "", "alerts")
	require.ErrorContains(t, err, "not logged in")
}

func TestCLI_StaffFlow(t *testing.T) {
	cfg, _ := setup(t)

	_, err := execute(t, cfg, "", "login", "-u", "jane_staff", "-p", "password123")
	require.NoError(t, err)

	out, err := execute(t, cfg, "", "schedule")
	require.NoError(t, err)
	assert.Contains(t, out, "Night patrol")
	assert.Contains(t, out, "8h")

	out, err = execute(t, cfg, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Attendance")
	assert.Contains(t, out, "Schedule")
	assert.NotContains(t, out, "Alerts")

	_, err = execute(t, cfg, "", "visitors", "add", "--name", "x")
	require.ErrorContains(t, err, "only available to residents")

	_, err = execute(t, cfg, "", "security")
	require.ErrorContains(t, err, "not available")
}

func TestCLI_AttendanceCheckInOut(t *testing.T) {
	cfg, _ := setup(t)

	_, err := execute(t, cfg, "", "login", "-u", "jane_staff", "-p", "password123")
	require.NoError(t, err)

	_, err = execute(t, cfg, "", "attendance", "check-out")
	require.ErrorContains(t, err, "no open attendance entry")

	out, err := execute(t, cfg, "", "attendance", "check-in", "--location", "Lobby")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked in at")

	out, err = execute(t, cfg, "", "attendance")
	require.NoError(t, err)
	assert.Contains(t, out, "in progress")
	assert.Contains(t, out, "Lobby")
	assert.Contains(t, out, "Days worked: 0")

	_, err = execute(t, cfg, "", "attendance", "check-in")
	require.ErrorContains(t, err, "already checked in")

	out, err = execute(t, cfg, "", "attendance", "check-out")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked out at")

	out, err = execute(t, cfg, "", "attendance")
	require.NoError(t, err)
	assert.NotContains(t, out, "in progress")
	assert.Contains(t, out, "Days worked: 1")
}

func TestCLI_SecurityFlow(t *testing.T) {
	cfg, b := setup(t)

	now := time.Now().UTC()
	_, err := b.visitors.CreateVisitor(context.Background(), store.VisitorRecord{
		ResidentID: 1, Name: "Mary Lee", VisitingUnit: "B-12-05", Status: types.VisitorApproved,
		Start: now.Add(-time.Hour), End: now.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = execute(t, cfg, "", "login", "-u", "sam_security", "-p", "password123")
	require.NoError(t, err)

	out, err := execute(t, cfg, "", "security", "--status", "DENIED")
	require.NoError(t, err)
	assert.Contains(t, out, "Security Access")
	assert.Contains(t, out, "Total: 1")
	assert.Contains(t, out, "John Lim")

	out, err = execute(t, cfg, "", "security", "visitors")
	require.NoError(t, err)
	assert.Contains(t, out, "Mary Lee")
	assert.Contains(t, out, "In building: 1")

	out, err = execute(t, cfg, "", "security", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Residents: 1")
	assert.Contains(t, out, "Visitors in building: 1")

	out, err = execute(t, cfg, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Residents: 1")
	assert.Contains(t, out, "Security Access")
	assert.Contains(t, out, "Granted: 2")
	assert.Contains(t, out, "Security Visitors")
	assert.Contains(t, out, "Attendance")

	out, err = execute(t, cfg, "", "attendance", "check-in")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked in at")
}

func TestCLI_Duration(t *testing.T) {
	cfg, _ := setup(t)

	out, err := execute(t, cfg, "", "duration", "22:00", "06:00")
	require.NoError(t, err)
	assert.Equal(t, "8h\n", out)

	out, err = execute(t, cfg, "", "duration", "09:00", "09:30")
	require.NoError(t, err)
	assert.Equal(t, "0h 30m\n", out)

	_, err = execute(t, cfg, "", "duration", "9am", "5pm")
	require.Error(t, err)
}
