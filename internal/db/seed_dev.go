package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type SeedDevOptions struct {
	// KnownModules are commissioned and bound to the main door.
	KnownModules []string

	// Password assigned to every seeded account.  Defaults to "password123".
	Password string

	// Now anchors the generated history.  Defaults to time.Now().
	Now time.Time
}

type seedUser struct {
	username   string
	role       string
	fullName   string
	email      string
	residentID any
	staffID    any
	position   string
}

var seedUsers = []seedUser{
	{"john_resident", "RESIDENT", "John Tan", "john@example.com", 1, nil, ""},
	{"jane_staff", "STAFF", "Jane Lim", "jane@example.com", nil, 1, "Concierge"},
	{"sam_security", "SECURITY", "Sam Wong", "sam@example.com", nil, 2, "Security Officer"},
}

// SeedDev populates an empty dev database with a door, its modules, three
// accounts and a month of access, alert, visitor, attendance and schedule
// history.  Re-running it is a no-op once the users exist.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	if opt.Password == "" {
		opt.Password = "password123"
	}
	if opt.Now.IsZero() {
		opt.Now = time.Now()
	}
	if len(opt.KnownModules) == 0 {
		opt.KnownModules = []string{"door-001"}
	}
	now := opt.Now.UTC()
	nowMs := now.UnixMilli()

	var existing int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users;`).Scan(&existing); err != nil {
		return fmt.Errorf("seed count users: %w", err)
	}
	if existing > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opt.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed hash password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exec := func(what, q string, args ...any) error {
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("seed %s: %w", what, err)
		}
		return nil
	}

	if err := exec("doors", `
INSERT OR IGNORE INTO doors(door_id, name, location, created_at_ms, updated_at_ms)
VALUES ('door_lobby', 'Lobby', 'Block A', ?, ?);`, nowMs, nowMs); err != nil {
		return err
	}

	for _, mid := range opt.KnownModules {
		mid = strings.TrimSpace(mid)
		if mid == "" {
			continue
		}
		if err := exec("module "+mid, `
INSERT INTO modules(
  module_id, door_id, display_name,
  enabled, commissioned_at_ms,
  created_at_ms, updated_at_ms
) VALUES (?, 'door_lobby', 'Lobby Camera', 1, ?, ?, ?)
ON CONFLICT(module_id) DO UPDATE SET
  door_id = excluded.door_id,
  enabled = 1,
  commissioned_at_ms = COALESCE(modules.commissioned_at_ms, excluded.commissioned_at_ms),
  updated_at_ms = excluded.updated_at_ms;
`, mid, nowMs, nowMs, nowMs); err != nil {
			return err
		}
	}

	for _, u := range seedUsers {
		if err := exec("user "+u.username, `
INSERT INTO users(username, password_hash, role, full_name, email, resident_id, staff_id, position, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			u.username, string(hash), u.role, u.fullName, u.email, u.residentID, u.staffID, u.position, nowMs); err != nil {
			return err
		}
	}

	module := strings.TrimSpace(opt.KnownModules[0])
	for d := 0; d < 30; d++ {
		day := now.AddDate(0, 0, -d)
		morning := time.Date(day.Year(), day.Month(), day.Day(), 8, 30, 0, 0, time.UTC)

		if err := exec("access event", `
INSERT INTO access_events(module_id, door_id, resident_id, received_at_ms, confidence,
  decision_granted, decision_reason, decided_at_ms)
VALUES (?, 'door_lobby', 1, ?, 0.97, 1, 'face_match', ?);`,
			module, morning.UnixMilli(), morning.UnixMilli()); err != nil {
			return err
		}

		if d%7 == 3 {
			late := morning.Add(13 * time.Hour)
			if err := exec("denied event", `
INSERT INTO access_events(module_id, door_id, resident_id, received_at_ms, confidence,
  decision_granted, decision_reason, decided_at_ms)
VALUES (?, 'door_lobby', 1, ?, 0.41, 0, 'low_confidence', ?);`,
				module, late.UnixMilli(), late.UnixMilli()); err != nil {
				return err
			}
			status := "READ"
			if d < 7 {
				status = "UNREAD"
			}
			if err := exec("alert", `
INSERT INTO alerts(resident_id, description, status, created_at_ms)
VALUES (1, 'Failed face attempt at Lobby', ?, ?);`,
				status, late.UnixMilli()); err != nil {
				return err
			}
		}

		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			entry := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
			var exit any
			if d > 0 {
				exit = entry.Add(8*time.Hour + 30*time.Minute).UnixMilli()
			}
			if err := exec("attendance", `
INSERT INTO attendance(staff_id, entry_time_ms, exit_time_ms, location, verification_method)
VALUES (1, ?, ?, 'Lobby', 'Face Recognition');`, entry.UnixMilli(), exit); err != nil {
				return err
			}
		}
	}

	for d := 0; d < 14; d++ {
		date := now.AddDate(0, 0, d).Format("2006-01-02")
		start, end, task := "09:00", "17:00", "Front desk"
		if d%3 == 2 {
			start, end, task = "22:00", "06:00", "Night patrol"
		}
		if err := exec("schedule", `
INSERT INTO schedules(staff_id, shift_date, shift_start, shift_end, task_description)
VALUES (1, ?, ?, ?, ?);`, date, start, end, task); err != nil {
			return err
		}
	}

	visitStart := now.Add(24 * time.Hour).Truncate(time.Hour)
	for i, v := range []struct{ name, status string }{{"Mary Lee", "APPROVED"}, {"David Ong", "PENDING"}} {
		s := visitStart.Add(time.Duration(i*24) * time.Hour)
		if err := exec("visitor", `
INSERT INTO visitors(resident_id, visitor_name, contact_number, visiting_unit, status,
  start_time_ms, end_time_ms, created_at_ms, updated_at_ms)
VALUES (1, ?, '98765432', 'B-12-05', ?, ?, ?, ?, ?);`,
			v.name, v.status, s.UnixMilli(), s.Add(2*time.Hour).UnixMilli(), nowMs, nowMs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}
	return nil
}
