package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

// ModuleRegistry resolves the door module behind an access request and
// keeps its last-contact time current.
type ModuleRegistry struct {
	store  store.DoorModuleStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewModuleRegistry(st store.DoorModuleStore, logger zerolog.Logger) *ModuleRegistry {
	return &ModuleRegistry{
		store:  st,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Resolve records contact from moduleID and returns it.  A module the
// server has never seen comes back inactive, never as an error.  Failing to
// record contact is logged and does not fail the lookup.
func (r *ModuleRegistry) Resolve(ctx context.Context, moduleID string) (store.DoorModule, error) {
	m, err := r.store.GetModule(ctx, moduleID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		m = store.DoorModule{ModuleID: moduleID}
	case err != nil:
		return store.DoorModule{}, err
	}

	now := r.now()
	if err := r.store.TouchModule(ctx, moduleID, now); err != nil {
		r.logger.Warn().Err(err).Str("module_id", moduleID).Msg("record module contact failed")
	} else {
		m.LastSeen = &now
	}
	return m, nil
}
