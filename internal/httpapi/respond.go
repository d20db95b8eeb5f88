package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/service"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: code})
}

// writeServiceError maps service sentinels onto HTTP statuses.  Anything
// unrecognised is logged and reported as a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *service.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{
			Error:   "Missing fields",
			Code:    "missing_fields",
			Missing: missing.Fields,
		})
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, service.ErrInvalidModuleID):
		writeError(w, http.StatusBadRequest, "invalid_module_id", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		writeError(w, http.StatusConflict, "already_checked_in", err.Error())
	case errors.Is(err, service.ErrNotCheckedIn):
		writeError(w, http.StatusConflict, "not_checked_in", err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}
