package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

type AlertStore struct {
	mu     sync.Mutex
	nextID int64
	alerts []store.AlertRecord
}

func NewAlertStore() *AlertStore {
	return &AlertStore{nextID: 1}
}

func (s *AlertStore) CreateAlert(_ context.Context, residentID int64, description string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if at.IsZero() {
		at = time.Now().UTC()
	}
	id := s.nextID
	s.nextID++
	s.alerts = append(s.alerts, store.AlertRecord{
		AlertID:     id,
		ResidentID:  residentID,
		Description: description,
		CreatedAt:   at,
	})
	return id, nil
}

func (s *AlertStore) ListAlerts(_ context.Context, residentID int64) ([]store.AlertRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.AlertRecord
	for _, a := range s.alerts {
		if a.ResidentID == residentID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *AlertStore) CountUnread(_ context.Context, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.alerts {
		if !a.Read && !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *AlertStore) MarkRead(_ context.Context, residentID, alertID int64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].AlertID == alertID && s.alerts[i].ResidentID == residentID {
			s.alerts[i].Read = true
			return nil
		}
	}
	return store.ErrNotFound
}
