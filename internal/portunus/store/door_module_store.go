package store

import (
	"context"
	"time"
)

// DoorModule is a face-recognition camera mounted on a door.  DoorID and
// DoorName are empty while the module is not mounted anywhere.
type DoorModule struct {
	ModuleID string
	DoorID   string
	DoorName string

	// Active modules are enabled, commissioned and not revoked.  Only they
	// may submit access requests.
	Active bool

	LastSeen *time.Time
}

// Door is the module's door name, falling back to its id.
func (m DoorModule) Door() string {
	if m.DoorName != "" {
		return m.DoorName
	}
	return m.ModuleID
}

type DoorModuleStore interface {
	// GetModule returns ErrNotFound for a module that has never contacted
	// the server.
	GetModule(ctx context.Context, moduleID string) (DoorModule, error)

	// TouchModule registers an unseen module as inactive and records the
	// time of contact.
	TouchModule(ctx context.Context, moduleID string, at time.Time) error
}
