package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

// AccessEventStore is an in-memory append-only log of access decisions.
// It is intended for use in tests and dev environments.
type AccessEventStore struct {
	mu     sync.Mutex
	nextID int64
	events []store.AccessEventRecord
	doors  map[string]string // module_id -> door name
}

// NewAccessEventStore takes an optional module_id -> door name mapping used
// to fill DoorName on read.
func NewAccessEventStore(doors map[string]string) *AccessEventStore {
	return &AccessEventStore{doors: doors}
}

func (s *AccessEventStore) RecordEvent(_ context.Context, rec store.AccessEventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.DecidedAt.IsZero() {
		rec.DecidedAt = time.Now().UTC()
	}
	s.nextID++
	rec.EventID = s.nextID
	s.events = append(s.events, rec)
	return nil
}

func (s *AccessEventStore) ListForResident(_ context.Context, residentID int64, r store.TimeRange) ([]store.AccessEventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.AccessEventRecord
	for _, e := range s.events {
		if e.ResidentID == nil || *e.ResidentID != residentID || !r.Contains(e.DecidedAt) {
			continue
		}
		e.DoorName = s.doors[e.ModuleID]
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DecidedAt.After(out[j].DecidedAt) })
	return out, nil
}

func (s *AccessEventStore) ListRecent(_ context.Context, r store.TimeRange, limit int) ([]store.AccessEventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.AccessEventRecord
	for _, e := range s.events {
		if !r.Contains(e.DecidedAt) {
			continue
		}
		e.DoorName = s.doors[e.ModuleID]
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DecidedAt.Equal(out[j].DecidedAt) {
			return out[i].EventID > out[j].EventID
		}
		return out[i].DecidedAt.After(out[j].DecidedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *AccessEventStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var deleted int64
	for _, e := range s.events {
		if e.DecidedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return deleted, nil
}

// Events returns a copy of all recorded events.  Test-only helper.
func (s *AccessEventStore) Events() []store.AccessEventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AccessEventRecord, len(s.events))
	copy(out, s.events)
	return out
}
