package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/service"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

type Dependencies struct {
	Logger          zerolog.Logger
	Addr            string
	AccessService   *service.AccessService
	AuthService     *service.AuthService
	ResidentService *service.ResidentService
	StaffService    *service.StaffService
	SecurityService *service.SecurityService

	// MaxUploadBytes caps face image uploads.  Defaults to 5 MiB.
	MaxUploadBytes int64
}

type Server struct {
	httpServer      *http.Server
	logger          zerolog.Logger
	mux             *http.ServeMux
	accessService   *service.AccessService
	authService     *service.AuthService
	residentService *service.ResidentService
	staffService    *service.StaffService
	securityService *service.SecurityService
	maxUpload       int64
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 5 << 20
	}

	s := &Server{
		logger:          d.Logger,
		mux:             mux,
		accessService:   d.AccessService,
		authService:     d.AuthService,
		residentService: d.ResidentService,
		staffService:    d.StaffService,
		securityService: d.SecurityService,
		maxUpload:       d.MaxUploadBytes,
	}

	// Door modules.
	mux.HandleFunc("POST /v1/access_request", s.handleAccessRequest)

	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.authed(s.handleLogout))
	mux.HandleFunc("GET /api/auth/check-session", s.authed(s.handleCheckSession))

	mux.HandleFunc("GET /api/resident/{id}/access-history", s.authed(s.resident(s.handleAccessHistory)))
	mux.HandleFunc("GET /api/resident/{id}/alerts", s.authed(s.resident(s.handleAlerts)))
	mux.HandleFunc("POST /api/resident/{id}/alerts/{alert_id}/read", s.authed(s.resident(s.handleMarkAlertRead)))
	mux.HandleFunc("GET /api/resident/{id}/visitors", s.authed(s.resident(s.handleListVisitors)))
	mux.HandleFunc("POST /api/resident/{id}/visitors", s.authed(s.resident(s.handleCreateVisitor)))
	mux.HandleFunc("PUT /api/resident/{id}/visitors/{visitor_id}", s.authed(s.resident(s.handleUpdateVisitor)))
	mux.HandleFunc("DELETE /api/resident/{id}/visitors/{visitor_id}", s.authed(s.resident(s.handleDeleteVisitor)))
	mux.HandleFunc("POST /api/resident/{id}/visitors/{visitor_id}/face-image", s.authed(s.resident(s.handleVisitorFace)))

	mux.HandleFunc("GET /api/staff/{id}/attendance", s.authed(s.staff(s.handleAttendance)))
	mux.HandleFunc("GET /api/staff/{id}/schedule", s.authed(s.staff(s.handleSchedule)))
	mux.HandleFunc("POST /api/staff/attendance/record", s.authed(s.handleRecordAttendance))

	mux.HandleFunc("GET /api/security/statistics", s.authed(s.security(s.handleSecurityStatistics)))
	mux.HandleFunc("GET /api/security/recent-access", s.authed(s.security(s.handleRecentAccess)))
	mux.HandleFunc("GET /api/security/current-visitors", s.authed(s.security(s.handleCurrentVisitors)))

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleAccessRequest(w http.ResponseWriter, r *http.Request) {
	var req types.AccessRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.accessService.Decide(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownModule) {
			// Unknown module is blocked from access flow
			writeJSON(w, http.StatusForbidden, resp)
			return
		}
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
