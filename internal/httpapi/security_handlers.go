package httpapi

import (
	"net/http"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/service"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

// security restricts a route to security officers.
func (s *Server) security(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r.Context()).Role != types.RoleSecurity {
			s.writeServiceError(w, r, service.ErrForbidden)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleSecurityStatistics(w http.ResponseWriter, r *http.Request) {
	resp, err := s.securityService.Statistics(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecentAccess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.securityService.RecentAccess(r.Context(), q.Get("limit"), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCurrentVisitors(w http.ResponseWriter, r *http.Request) {
	resp, err := s.securityService.CurrentVisitors(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
