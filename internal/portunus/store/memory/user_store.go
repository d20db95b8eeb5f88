package memory

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[int64]store.UserRecord
}

func NewUserStore(users ...store.UserRecord) *UserStore {
	s := &UserStore{users: make(map[int64]store.UserRecord, len(users))}
	for _, u := range users {
		s.users[u.UserID] = u
	}
	return s
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return store.UserRecord{}, store.ErrNotFound
}

func (s *UserStore) CountByRole(_ context.Context, role string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *UserStore) ResidentNames(_ context.Context) (map[int64]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]string)
	for _, u := range s.users {
		if u.ResidentID != nil {
			out[*u.ResidentID] = u.FullName
		}
	}
	return out, nil
}

func (s *UserStore) GetUser(_ context.Context, userID int64) (store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return store.UserRecord{}, store.ErrNotFound
	}
	return u, nil
}
