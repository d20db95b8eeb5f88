package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/BrandonDHaskell/Portunus/condo/internal/db"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

type VisitorStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewVisitorStore(db *sql.DB, writer *dbpkg.Worker) *VisitorStore {
	return &VisitorStore{db: db, writer: writer}
}

const visitorColumns = `
SELECT visitor_id, resident_id, visitor_name, contact_number, visiting_unit,
       status, start_time_ms, end_time_ms, COALESCE(face_image_ref, '')
FROM visitors`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisitor(row rowScanner) (store.VisitorRecord, error) {
	var (
		v       store.VisitorRecord
		startMs int64
		endMs   int64
	)
	if err := row.Scan(&v.VisitorID, &v.ResidentID, &v.Name, &v.ContactNumber,
		&v.VisitingUnit, &v.Status, &startMs, &endMs, &v.FaceImageRef); err != nil {
		return store.VisitorRecord{}, err
	}
	v.Start = time.UnixMilli(startMs).UTC()
	v.End = time.UnixMilli(endMs).UTC()
	return v, nil
}

func (s *VisitorStore) ListVisitors(ctx context.Context, residentID int64) ([]store.VisitorRecord, error) {
	rows, err := s.db.QueryContext(ctx, visitorColumns+`
WHERE resident_id = ?
ORDER BY start_time_ms, visitor_id;
`, residentID)
	if err != nil {
		return nil, fmt.Errorf("ListVisitors query: %w", err)
	}
	defer rows.Close()

	var out []store.VisitorRecord
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("ListVisitors scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *VisitorStore) ListActive(ctx context.Context, at time.Time) ([]store.VisitorRecord, error) {
	atMs := at.UTC().UnixMilli()
	rows, err := s.db.QueryContext(ctx, visitorColumns+`
WHERE status = 'APPROVED' AND start_time_ms <= ? AND end_time_ms >= ?
ORDER BY start_time_ms, visitor_id;
`, atMs, atMs)
	if err != nil {
		return nil, fmt.Errorf("ListActive query: %w", err)
	}
	defer rows.Close()

	var out []store.VisitorRecord
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *VisitorStore) CreateVisitor(ctx context.Context, v store.VisitorRecord) (store.VisitorRecord, error) {
	if v.Status == "" {
		v.Status = "PENDING"
	}
	nowMs := time.Now().UTC().UnixMilli()

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO visitors(resident_id, visitor_name, contact_number, visiting_unit, status,
  start_time_ms, end_time_ms, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`, v.ResidentID, v.Name, v.ContactNumber, v.VisitingUnit, v.Status,
			v.Start.UTC().UnixMilli(), v.End.UTC().UnixMilli(), nowMs, nowMs)
		if err != nil {
			return fmt.Errorf("CreateVisitor insert: %w", err)
		}
		v.VisitorID, err = res.LastInsertId()
		return err
	})
	return v, err
}

func (s *VisitorStore) UpdateVisitorStatus(ctx context.Context, residentID, visitorID int64, status string) (store.VisitorRecord, error) {
	var out store.VisitorRecord
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE visitors SET status = ?, updated_at_ms = ?
WHERE visitor_id = ? AND resident_id = ?;
`, status, time.Now().UTC().UnixMilli(), visitorID, residentID)
		if err != nil {
			return fmt.Errorf("UpdateVisitorStatus: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		out, err = scanVisitor(tx.QueryRowContext(ctx, visitorColumns+` WHERE visitor_id = ?;`, visitorID))
		return err
	})
	return out, err
}

func (s *VisitorStore) DeleteVisitor(ctx context.Context, residentID, visitorID int64) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM visitors WHERE visitor_id = ? AND resident_id = ?;
`, visitorID, residentID)
		if err != nil {
			return fmt.Errorf("DeleteVisitor: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *VisitorStore) SetVisitorFace(ctx context.Context, residentID, visitorID int64, ref string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE visitors SET face_image_ref = ?, updated_at_ms = ?
WHERE visitor_id = ? AND resident_id = ?;
`, ref, time.Now().UTC().UnixMilli(), visitorID, residentID)
		if err != nil {
			return fmt.Errorf("SetVisitorFace: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

