package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

// UserStore is read-only; accounts are provisioned by the seeder.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `
SELECT user_id, username, password_hash, role, full_name, email, position,
       resident_id, staff_id, created_at_ms
FROM users`

func (s *UserStore) FindByUsername(ctx context.Context, username string) (store.UserRecord, error) {
	username = strings.TrimSpace(username)
	return s.scanOne(s.db.QueryRowContext(ctx, userColumns+` WHERE username = ?;`, username))
}

func (s *UserStore) GetUser(ctx context.Context, userID int64) (store.UserRecord, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, userColumns+` WHERE user_id = ?;`, userID))
}

func (s *UserStore) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?;`, role).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountByRole: %w", err)
	}
	return n, nil
}

func (s *UserStore) ResidentNames(ctx context.Context) (map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT resident_id, full_name FROM users WHERE resident_id IS NOT NULL;
`)
	if err != nil {
		return nil, fmt.Errorf("ResidentNames query: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("ResidentNames scan: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

func (s *UserStore) scanOne(row *sql.Row) (store.UserRecord, error) {
	var (
		u         store.UserRecord
		hash      string
		resident  sql.NullInt64
		staff     sql.NullInt64
		createdMs int64
	)
	err := row.Scan(&u.UserID, &u.Username, &hash, &u.Role, &u.FullName, &u.Email,
		&u.Position, &resident, &staff, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return store.UserRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("user scan: %w", err)
	}

	u.PasswordHash = []byte(hash)
	u.CreatedAt = time.UnixMilli(createdMs).UTC()
	if resident.Valid {
		v := resident.Int64
		u.ResidentID = &v
	}
	if staff.Valid {
		v := staff.Int64
		u.StaffID = &v
	}
	return u, nil
}
