package store

import (
	"context"
	"time"
)

type UserRecord struct {
	UserID       int64
	Username     string
	PasswordHash []byte
	Role         string
	FullName     string
	Email        string
	Position     string
	ResidentID   *int64
	StaffID      *int64
	CreatedAt    time.Time
}

type UserStore interface {
	// FindByUsername returns ErrNotFound for unknown usernames.
	FindByUsername(ctx context.Context, username string) (UserRecord, error)
	GetUser(ctx context.Context, userID int64) (UserRecord, error)

	CountByRole(ctx context.Context, role string) (int, error)

	// ResidentNames maps resident ids to the account's full name.
	ResidentNames(ctx context.Context) (map[int64]string, error)
}
