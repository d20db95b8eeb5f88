package httpapi

import (
	"net/http"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/service"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

// staff restricts a route to the staff member named in its path.
func (s *Server) staff(next idHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
			return
		}
		if !claimsFrom(r.Context()).OwnsStaff(id) {
			s.writeServiceError(w, r, service.ErrForbidden)
			return
		}
		next(w, r, id)
	}
}

func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request, id int64) {
	q := r.URL.Query()
	resp, err := s.staffService.Attendance(r.Context(), id, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request, id int64) {
	q := r.URL.Query()
	resp, err := s.staffService.Schedule(r.Context(), id, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRecordAttendance opens or closes an attendance entry.  staff_id
// defaults to the caller and must belong to them.
func (s *Server) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	var req types.RecordAttendanceRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	claims := claimsFrom(r.Context())
	if req.StaffID == 0 && claims.StaffID != nil {
		req.StaffID = *claims.StaffID
	}
	if !claims.OwnsStaff(req.StaffID) {
		s.writeServiceError(w, r, service.ErrForbidden)
		return
	}

	resp, err := s.staffService.RecordAttendance(r.Context(), req.StaffID, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if resp.ExitTime == nil {
		status = http.StatusCreated
	}
	s.logger.Info().Int64("staff_id", req.StaffID).Str("action", req.Action).Msg("attendance recorded")
	writeJSON(w, status, resp)
}
