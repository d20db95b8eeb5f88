package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/BrandonDHaskell/Portunus/condo/internal/db"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

type AccessEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessEventStore(db *sql.DB, writer *dbpkg.Worker) *AccessEventStore {
	return &AccessEventStore{db: db, writer: writer}
}

func (s *AccessEventStore) RecordEvent(ctx context.Context, rec store.AccessEventRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	if rec.DecidedAt.IsZero() {
		rec.DecidedAt = time.Now().UTC()
	}

	receivedMs := rec.ReceivedAt.UTC().UnixMilli()
	decidedMs := rec.DecidedAt.UTC().UnixMilli()

	var requestedMs any
	if rec.RequestedAt != nil {
		requestedMs = rec.RequestedAt.UTC().UnixMilli()
	}

	var residentID any
	if rec.ResidentID != nil {
		residentID = *rec.ResidentID
	}

	var confidence any
	if rec.Confidence != nil {
		confidence = *rec.Confidence
	}

	var granted int
	if rec.Granted {
		granted = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		doorID, err := registerModule(ctx, tx, rec.ModuleID, receivedMs)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO access_events(
  module_id, door_id, resident_id, received_at_ms, requested_at_ms,
  confidence, decision_granted, decision_reason, decided_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			rec.ModuleID, doorID, residentID, receivedMs, requestedMs,
			confidence, granted, rec.Reason, decidedMs,
		); err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}

		return nil
	})
}

const eventColumns = `
SELECT e.event_id, e.module_id, COALESCE(d.name, ''), e.resident_id, e.received_at_ms,
       e.requested_at_ms, e.confidence, e.decision_granted, e.decision_reason,
       e.decided_at_ms
FROM access_events e
LEFT JOIN doors d ON d.door_id = e.door_id`

func (s *AccessEventStore) ListForResident(ctx context.Context, residentID int64, r store.TimeRange) ([]store.AccessEventRecord, error) {
	from, to := r.Bounds()

	rows, err := s.db.QueryContext(ctx, eventColumns+`
WHERE e.resident_id = ?
  AND (? IS NULL OR e.decided_at_ms >= ?)
  AND (? IS NULL OR e.decided_at_ms <= ?)
ORDER BY e.decided_at_ms DESC, e.event_id DESC;
`, residentID, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("ListForResident query: %w", err)
	}
	return collectEvents(rows)
}

func (s *AccessEventStore) ListRecent(ctx context.Context, r store.TimeRange, limit int) ([]store.AccessEventRecord, error) {
	from, to := r.Bounds()
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, eventColumns+`
WHERE (? IS NULL OR e.decided_at_ms >= ?)
  AND (? IS NULL OR e.decided_at_ms <= ?)
ORDER BY e.decided_at_ms DESC, e.event_id DESC
LIMIT ?;
`, from, from, to, to, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent query: %w", err)
	}
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]store.AccessEventRecord, error) {
	defer rows.Close()

	var out []store.AccessEventRecord
	for rows.Next() {
		var (
			rec         store.AccessEventRecord
			resident    sql.NullInt64
			receivedMs  int64
			requestedMs sql.NullInt64
			confidence  sql.NullFloat64
			granted     int
			decidedMs   int64
		)
		if err := rows.Scan(&rec.EventID, &rec.ModuleID, &rec.DoorName, &resident, &receivedMs,
			&requestedMs, &confidence, &granted, &rec.Reason, &decidedMs); err != nil {
			return nil, fmt.Errorf("access event scan: %w", err)
		}

		rec.ReceivedAt = time.UnixMilli(receivedMs).UTC()
		rec.DecidedAt = time.UnixMilli(decidedMs).UTC()
		rec.Granted = granted == 1
		if resident.Valid {
			v := resident.Int64
			rec.ResidentID = &v
		}
		if requestedMs.Valid {
			t := time.UnixMilli(requestedMs.Int64).UTC()
			rec.RequestedAt = &t
		}
		if confidence.Valid {
			v := confidence.Float64
			rec.Confidence = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PruneOlderThan deletes events decided before cutoff and returns the number
// of rows removed.
func (s *AccessEventStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM access_events
WHERE decided_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
