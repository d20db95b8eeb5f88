package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/BrandonDHaskell/Portunus/condo/internal/db"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

type AlertStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAlertStore(db *sql.DB, writer *dbpkg.Worker) *AlertStore {
	return &AlertStore{db: db, writer: writer}
}

func (s *AlertStore) CreateAlert(ctx context.Context, residentID int64, description string, at time.Time) (int64, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO alerts(resident_id, description, status, created_at_ms)
VALUES (?, ?, 'UNREAD', ?);
`, residentID, description, at.UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("CreateAlert insert: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

func (s *AlertStore) ListAlerts(ctx context.Context, residentID int64) ([]store.AlertRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT alert_id, resident_id, description, status, created_at_ms
FROM alerts
WHERE resident_id = ?
ORDER BY created_at_ms DESC, alert_id DESC;
`, residentID)
	if err != nil {
		return nil, fmt.Errorf("ListAlerts query: %w", err)
	}
	defer rows.Close()

	var out []store.AlertRecord
	for rows.Next() {
		var (
			a         store.AlertRecord
			status    string
			createdMs int64
		)
		if err := rows.Scan(&a.AlertID, &a.ResidentID, &a.Description, &status, &createdMs); err != nil {
			return nil, fmt.Errorf("ListAlerts scan: %w", err)
		}
		a.Read = status == "READ"
		a.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *AlertStore) CountUnread(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM alerts WHERE status = 'UNREAD' AND created_at_ms >= ?;
`, since.UTC().UnixMilli()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountUnread: %w", err)
	}
	return n, nil
}

func (s *AlertStore) MarkRead(ctx context.Context, residentID, alertID int64, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE alerts
SET status = 'READ',
    read_at_ms = COALESCE(read_at_ms, ?)
WHERE alert_id = ? AND resident_id = ?;
`, at.UTC().UnixMilli(), alertID, residentID)
		if err != nil {
			return fmt.Errorf("MarkRead update: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}
