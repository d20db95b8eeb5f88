package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 500
)

// SecurityService serves the building-wide views used by the security desk.
type SecurityService struct {
	events   store.AccessEventStore
	alerts   store.AlertStore
	visitors store.VisitorStore
	users    store.UserStore
	loc      *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

func NewSecurityService(
	events store.AccessEventStore,
	alerts store.AlertStore,
	visitors store.VisitorStore,
	users store.UserStore,
	loc *time.Location,
	logger zerolog.Logger,
) *SecurityService {
	if loc == nil {
		loc = time.Local
	}
	return &SecurityService{
		events:   events,
		alerts:   alerts,
		visitors: visitors,
		users:    users,
		loc:      loc,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Statistics counts residents, visitors currently inside, and today's door
// decisions and unread alerts.  "Today" starts at local midnight.
func (s *SecurityService) Statistics(ctx context.Context) (types.SecurityStatistics, error) {
	now := s.now()
	local := now.In(s.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)

	var (
		out types.SecurityStatistics
		err error
	)
	if out.TotalResidents, err = s.users.CountByRole(ctx, types.RoleResident); err != nil {
		return types.SecurityStatistics{}, err
	}

	active, err := s.visitors.ListActive(ctx, now)
	if err != nil {
		return types.SecurityStatistics{}, err
	}
	out.ActiveVisitors = len(active)

	today, err := s.events.ListRecent(ctx, store.TimeRange{From: &midnight}, 0)
	if err != nil {
		return types.SecurityStatistics{}, err
	}
	out.TodayAccessCount = len(today)

	if out.AlertsToday, err = s.alerts.CountUnread(ctx, midnight); err != nil {
		return types.SecurityStatistics{}, err
	}
	return out, nil
}

// RecentAccess lists building-wide door decisions, newest first.  limit is
// the raw query value: empty means 10 and anything above 500 is capped.
func (s *SecurityService) RecentAccess(ctx context.Context, limit, fromDate, toDate string) (types.RecentAccessResponse, error) {
	n := defaultRecentLimit
	if v := strings.TrimSpace(limit); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return types.RecentAccessResponse{}, invalid("limit %q is not a positive integer", v)
		}
		n = min(parsed, maxRecentLimit)
	}

	r, err := dayRange(fromDate, toDate, s.loc)
	if err != nil {
		return types.RecentAccessResponse{}, err
	}

	evs, err := s.events.ListRecent(ctx, r, n)
	if err != nil {
		return types.RecentAccessResponse{}, err
	}
	names, err := s.users.ResidentNames(ctx)
	if err != nil {
		return types.RecentAccessResponse{}, err
	}

	out := types.RecentAccessResponse{Logs: make([]types.AccessLogEntry, 0, len(evs))}
	for _, ev := range evs {
		entry := types.AccessLogEntry{
			LogID:                 ev.EventID,
			AccessTime:            wireTime(ev.DecidedAt, s.loc),
			PersonName:            "Unknown",
			PersonType:            types.PersonUnknown,
			AccessPoint:           ev.DoorName,
			AccessResult:          types.ResultDenied,
			Reason:                ev.Reason,
			RecognitionConfidence: ev.Confidence,
		}
		if entry.AccessPoint == "" {
			entry.AccessPoint = ev.ModuleID
		}
		if ev.Granted {
			entry.AccessResult = types.ResultGranted
		}
		if ev.ResidentID != nil {
			entry.PersonType = types.PersonResident
			if name := names[*ev.ResidentID]; name != "" {
				entry.PersonName = name
			}
		}
		out.Logs = append(out.Logs, entry)
	}
	return out, nil
}

// CurrentVisitors lists approved visitors whose visit window covers now.
// Entry time is the start of the approved window.
func (s *SecurityService) CurrentVisitors(ctx context.Context) (types.CurrentVisitorsResponse, error) {
	recs, err := s.visitors.ListActive(ctx, s.now())
	if err != nil {
		return types.CurrentVisitorsResponse{}, err
	}

	out := types.CurrentVisitorsResponse{Visitors: make([]types.CurrentVisitor, 0, len(recs))}
	for _, v := range recs {
		out.Visitors = append(out.Visitors, types.CurrentVisitor{
			VisitorID:    v.VisitorID,
			VisitorName:  v.Name,
			VisitingUnit: v.VisitingUnit,
			EntryTime:    wireTime(v.Start, s.loc),
			ExpectedExit: wireTime(v.End, s.loc),
			Status:       types.VisitorInBuilding,
		})
	}
	s.logger.Debug().Int("count", len(out.Visitors)).Msg("current visitors")
	return out, nil
}
