package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

// Face image uploads accepted by SaveVisitorFace, keyed by content type.
var faceImageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type ResidentConfig struct {
	// FaceDir receives uploaded visitor face images.  Defaults to
	// ./data/faces.
	FaceDir string

	// Location renders wire timestamps and interprets date filters.
	// Defaults to time.Local.
	Location *time.Location
}

type ResidentService struct {
	events   store.AccessEventStore
	alerts   store.AlertStore
	visitors store.VisitorStore
	faceDir  string
	loc      *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

func NewResidentService(
	events store.AccessEventStore,
	alerts store.AlertStore,
	visitors store.VisitorStore,
	cfg ResidentConfig,
	logger zerolog.Logger,
) *ResidentService {
	if cfg.FaceDir == "" {
		cfg.FaceDir = "./data/faces"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &ResidentService{
		events:   events,
		alerts:   alerts,
		visitors: visitors,
		faceDir:  cfg.FaceDir,
		loc:      cfg.Location,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AccessHistory lists the resident's door decisions, newest first.
func (s *ResidentService) AccessHistory(ctx context.Context, residentID int64, fromDate, toDate string) (types.AccessHistoryResponse, error) {
	r, err := dayRange(fromDate, toDate, s.loc)
	if err != nil {
		return types.AccessHistoryResponse{}, err
	}

	evs, err := s.events.ListForResident(ctx, residentID, r)
	if err != nil {
		return types.AccessHistoryResponse{}, err
	}

	out := types.AccessHistoryResponse{ResidentID: residentID, Records: make([]types.AccessRecord, 0, len(evs))}
	for _, ev := range evs {
		result := types.ResultDenied
		if ev.Granted {
			result = types.ResultGranted
		}
		door := ev.DoorName
		if door == "" {
			door = ev.ModuleID
		}
		out.Records = append(out.Records, types.AccessRecord{
			Timestamp: wireTime(ev.DecidedAt, s.loc),
			Door:      door,
			Result:    result,
			Reason:    ev.Reason,
		})
	}
	return out, nil
}

func (s *ResidentService) Alerts(ctx context.Context, residentID int64) (types.AlertsResponse, error) {
	recs, err := s.alerts.ListAlerts(ctx, residentID)
	if err != nil {
		return types.AlertsResponse{}, err
	}

	out := types.AlertsResponse{ResidentID: residentID, Alerts: make([]types.Alert, 0, len(recs))}
	for _, a := range recs {
		status := types.AlertUnread
		if a.Read {
			status = types.AlertRead
		}
		out.Alerts = append(out.Alerts, types.Alert{
			AlertID:     a.AlertID,
			Timestamp:   wireTime(a.CreatedAt, s.loc),
			Description: a.Description,
			Status:      status,
		})
	}
	return out, nil
}

func (s *ResidentService) MarkAlertRead(ctx context.Context, residentID, alertID int64) error {
	return mapNotFound(s.alerts.MarkRead(ctx, residentID, alertID, s.now()))
}

func (s *ResidentService) Visitors(ctx context.Context, residentID int64) (types.VisitorsResponse, error) {
	recs, err := s.visitors.ListVisitors(ctx, residentID)
	if err != nil {
		return types.VisitorsResponse{}, err
	}
	out := types.VisitorsResponse{ResidentID: residentID, Visitors: make([]types.Visitor, 0, len(recs))}
	for _, v := range recs {
		out.Visitors = append(out.Visitors, s.toVisitor(v))
	}
	return out, nil
}

// CreateVisitor registers a visit window.  New visitors start PENDING.
func (s *ResidentService) CreateVisitor(ctx context.Context, residentID int64, req types.CreateVisitorRequest) (types.Visitor, error) {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"visitor_name", req.VisitorName},
		{"contact_number", req.ContactNumber},
		{"visiting_unit", req.VisitingUnit},
		{"start_time", req.StartTime},
		{"end_time", req.EndTime},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return types.Visitor{}, &MissingFieldsError{Fields: missing}
	}

	start, err := s.parseWireTime(req.StartTime)
	if err != nil {
		return types.Visitor{}, invalid("start_time %q", req.StartTime)
	}
	end, err := s.parseWireTime(req.EndTime)
	if err != nil {
		return types.Visitor{}, invalid("end_time %q", req.EndTime)
	}
	if !end.After(start) {
		return types.Visitor{}, invalid("end_time must be after start_time")
	}

	rec, err := s.visitors.CreateVisitor(ctx, store.VisitorRecord{
		ResidentID:    residentID,
		Name:          strings.TrimSpace(req.VisitorName),
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		VisitingUnit:  strings.TrimSpace(req.VisitingUnit),
		Status:        types.VisitorPending,
		Start:         start,
		End:           end,
	})
	if err != nil {
		return types.Visitor{}, err
	}
	s.logger.Info().Int64("resident_id", residentID).Int64("visitor_id", rec.VisitorID).Msg("visitor created")
	return s.toVisitor(rec), nil
}

func (s *ResidentService) UpdateVisitorStatus(ctx context.Context, residentID, visitorID int64, status string) (types.Visitor, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	switch status {
	case types.VisitorPending, types.VisitorApproved, types.VisitorDenied:
	case "":
		return types.Visitor{}, &MissingFieldsError{Fields: []string{"status"}}
	default:
		return types.Visitor{}, invalid("unknown visitor status %q", status)
	}

	rec, err := s.visitors.UpdateVisitorStatus(ctx, residentID, visitorID, status)
	if err != nil {
		return types.Visitor{}, mapNotFound(err)
	}
	return s.toVisitor(rec), nil
}

func (s *ResidentService) DeleteVisitor(ctx context.Context, residentID, visitorID int64) error {
	return mapNotFound(s.visitors.DeleteVisitor(ctx, residentID, visitorID))
}

// SaveVisitorFace stores an uploaded face image under a random name and
// links it to the visitor.  It returns the stored object name.
func (s *ResidentService) SaveVisitorFace(ctx context.Context, residentID, visitorID int64, contentType string, r io.Reader) (string, error) {
	ext, ok := faceImageExt[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", invalid("unsupported image type %q", contentType)
	}

	if err := os.MkdirAll(s.faceDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir face dir: %w", err)
	}
	name := uuid.NewString() + ext
	path := filepath.Join(s.faceDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create face image: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write face image: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close face image: %w", err)
	}

	if err := s.visitors.SetVisitorFace(ctx, residentID, visitorID, name); err != nil {
		_ = os.Remove(path)
		return "", mapNotFound(err)
	}
	return name, nil
}

func (s *ResidentService) toVisitor(v store.VisitorRecord) types.Visitor {
	return types.Visitor{
		VisitorID:     v.VisitorID,
		VisitorName:   v.Name,
		ContactNumber: v.ContactNumber,
		VisitingUnit:  v.VisitingUnit,
		Status:        v.Status,
		StartTime:     wireTime(v.Start, s.loc),
		EndTime:       wireTime(v.End, s.loc),
		HasFaceImage:  v.FaceImageRef != "",
	}
}

// parseWireTime accepts RFC 3339 or a zone-less local timestamp.
func (s *ResidentService) parseWireTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{WireLayout, "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, v, s.loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognised timestamp")
}

func mapNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
