package httpapi

import (
	"net/http"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.authService.Logout(claimsFrom(r.Context()))
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Logged out"})
}

func (s *Server) handleCheckSession(w http.ResponseWriter, r *http.Request) {
	u, err := s.authService.CurrentUser(r.Context(), claimsFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.SessionResponse{Authenticated: true, User: &u})
}
