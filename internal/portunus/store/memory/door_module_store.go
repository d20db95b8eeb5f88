package memory

import (
	"context"
	"sync"
	"time"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

// DoorModuleStore keeps door modules in a map.  Modules that contact the
// server without being configured are added as inactive.
type DoorModuleStore struct {
	mu      sync.RWMutex
	modules map[string]store.DoorModule
}

// NewDoorModuleStore takes the configured modules.  Set Active on the ones
// allowed to open doors.
func NewDoorModuleStore(modules ...store.DoorModule) *DoorModuleStore {
	s := &DoorModuleStore{modules: make(map[string]store.DoorModule, len(modules))}
	for _, m := range modules {
		s.modules[m.ModuleID] = m
	}
	return s
}

// ActiveModule is shorthand for a commissioned module mounted on door.
func ActiveModule(moduleID, door string) store.DoorModule {
	return store.DoorModule{ModuleID: moduleID, DoorID: moduleID, DoorName: door, Active: true}
}

func (s *DoorModuleStore) GetModule(_ context.Context, moduleID string) (store.DoorModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.modules[moduleID]
	if !ok {
		return store.DoorModule{}, store.ErrNotFound
	}
	return m, nil
}

func (s *DoorModuleStore) TouchModule(_ context.Context, moduleID string, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.modules[moduleID]
	if !ok {
		m = store.DoorModule{ModuleID: moduleID}
	}
	m.LastSeen = &at
	s.modules[moduleID] = m
	return nil
}
