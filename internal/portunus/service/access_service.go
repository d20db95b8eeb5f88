package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

// Decision reasons recorded with every access event.
const (
	ReasonUnknownModule    = "unknown_module"
	ReasonNoMatch          = "no_match"
	ReasonLowConfidence    = "low_confidence"
	ReasonAllowAll         = "allow_all"
	ReasonResidentAllowed  = "resident_allowed"
	ReasonResidentDisabled = "resident_not_allowed"
)

type AccessPolicy struct {
	AllowAll bool

	// AllowedResidentIDs is consulted when AllowAll is false.
	AllowedResidentIDs map[int64]struct{}

	// MinConfidence rejects face matches scored below it.  Zero disables
	// the check.
	MinConfidence float64
}

type AccessService struct {
	registry   *ModuleRegistry
	policy     AccessPolicy
	eventStore store.AccessEventStore
	alerts     store.AlertStore
	logger     zerolog.Logger
	now        func() time.Time
}

func NewAccessService(
	reg *ModuleRegistry,
	policy AccessPolicy,
	es store.AccessEventStore,
	alerts store.AlertStore,
	logger zerolog.Logger,
) *AccessService {
	return &AccessService{
		registry:   reg,
		policy:     policy,
		eventStore: es,
		alerts:     alerts,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Decide evaluates a face-recognition access attempt from a door module,
// records the decision and raises a resident alert for denied attempts
// against a matched resident.
func (s *AccessService) Decide(ctx context.Context, req types.AccessRequest) (types.AccessResponse, error) {
	now := s.now()

	moduleID := strings.TrimSpace(req.ModuleID)
	if moduleID == "" {
		return types.AccessResponse{}, ErrInvalidModuleID
	}

	module, err := s.registry.Resolve(ctx, moduleID)
	if err != nil {
		return types.AccessResponse{}, err
	}

	resp := types.AccessResponse{
		ModuleID:   moduleID,
		Door:       module.DoorName,
		ServerTime: now.Format(time.RFC3339Nano),
	}

	if !module.Active {
		resp.Reason = ReasonUnknownModule
		s.recordEvent(ctx, req, false, ReasonUnknownModule, now)
		s.logger.Warn().Str("module_id", moduleID).Msg("access request from inactive module")
		return resp, ErrUnknownModule
	}

	granted, reason := s.evaluate(req)
	s.recordEvent(ctx, req, granted, reason, now)

	if !granted && req.ResidentID != 0 {
		desc := fmt.Sprintf("Denied access attempt at %s (%s)", module.Door(), reason)
		if _, err := s.alerts.CreateAlert(ctx, req.ResidentID, desc, now); err != nil {
			s.logger.Error().Err(err).Int64("resident_id", req.ResidentID).Msg("create alert failed")
		}
	}

	resp.OK = true
	resp.Known = true
	resp.Granted = granted
	resp.Reason = reason
	return resp, nil
}

func (s *AccessService) evaluate(req types.AccessRequest) (bool, string) {
	if req.ResidentID == 0 {
		return false, ReasonNoMatch
	}
	if s.policy.MinConfidence > 0 && (req.Confidence == nil || *req.Confidence < s.policy.MinConfidence) {
		return false, ReasonLowConfidence
	}
	if s.policy.AllowAll {
		return true, ReasonAllowAll
	}
	if _, ok := s.policy.AllowedResidentIDs[req.ResidentID]; ok {
		return true, ReasonResidentAllowed
	}
	return false, ReasonResidentDisabled
}

// recordEvent appends the decision to the audit log.  A failed write is
// logged, not returned: the door still gets its answer.
func (s *AccessService) recordEvent(
	ctx context.Context,
	req types.AccessRequest,
	granted bool,
	reason string,
	decidedAt time.Time,
) {
	rec := store.AccessEventRecord{
		ModuleID:   strings.TrimSpace(req.ModuleID),
		ReceivedAt: decidedAt,
		Confidence: req.Confidence,
		Granted:    granted,
		Reason:     reason,
		DecidedAt:  decidedAt,
	}
	if req.ResidentID != 0 {
		id := req.ResidentID
		rec.ResidentID = &id
	}
	if t := parseOptionalTimestamp(req.RequestedAt); t != nil {
		rec.RequestedAt = t
	}

	if err := s.eventStore.RecordEvent(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("module_id", rec.ModuleID).Msg("record access event failed")
	}
}

// parseOptionalTimestamp parses a device-reported RFC 3339 timestamp.
// Returns nil if the string is empty or unparseable.
func parseOptionalTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		u := t.UTC()
		return &u
	}
	return nil
}
