package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

type VisitorStore struct {
	mu       sync.Mutex
	nextID   int64
	visitors map[int64]store.VisitorRecord
}

func NewVisitorStore() *VisitorStore {
	return &VisitorStore{nextID: 1, visitors: make(map[int64]store.VisitorRecord)}
}

func (s *VisitorStore) ListVisitors(_ context.Context, residentID int64) ([]store.VisitorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.VisitorRecord
	for _, v := range s.visitors {
		if v.ResidentID == residentID {
			out = append(out, v)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *VisitorStore) ListActive(_ context.Context, at time.Time) ([]store.VisitorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.VisitorRecord
	for _, v := range s.visitors {
		if v.Status == "APPROVED" && !at.Before(v.Start) && !at.After(v.End) {
			out = append(out, v)
		}
	}
	sortByStart(out)
	return out, nil
}

func sortByStart(vs []store.VisitorRecord) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].Start.Equal(vs[j].Start) {
			return vs[i].VisitorID < vs[j].VisitorID
		}
		return vs[i].Start.Before(vs[j].Start)
	})
}

func (s *VisitorStore) CreateVisitor(_ context.Context, v store.VisitorRecord) (store.VisitorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.VisitorID = s.nextID
	s.nextID++
	s.visitors[v.VisitorID] = v
	return v, nil
}

func (s *VisitorStore) UpdateVisitorStatus(_ context.Context, residentID, visitorID int64, status string) (store.VisitorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[visitorID]
	if !ok || v.ResidentID != residentID {
		return store.VisitorRecord{}, store.ErrNotFound
	}
	v.Status = status
	s.visitors[visitorID] = v
	return v, nil
}

func (s *VisitorStore) DeleteVisitor(_ context.Context, residentID, visitorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[visitorID]
	if !ok || v.ResidentID != residentID {
		return store.ErrNotFound
	}
	delete(s.visitors, visitorID)
	return nil
}

func (s *VisitorStore) SetVisitorFace(_ context.Context, residentID, visitorID int64, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[visitorID]
	if !ok || v.ResidentID != residentID {
		return store.ErrNotFound
	}
	v.FaceImageRef = ref
	s.visitors[visitorID] = v
	return nil
}
