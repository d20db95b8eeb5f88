package httpapi

import (
	"errors"
	"net/http"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/service"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

// idHandler receives the already authorised {id} path value.
type idHandler func(w http.ResponseWriter, r *http.Request, id int64)

// resident restricts a route to the resident named in its path.
func (s *Server) resident(next idHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
			return
		}
		if !claimsFrom(r.Context()).OwnsResident(id) {
			s.writeServiceError(w, r, service.ErrForbidden)
			return
		}
		next(w, r, id)
	}
}

func (s *Server) handleAccessHistory(w http.ResponseWriter, r *http.Request, id int64) {
	q := r.URL.Query()
	resp, err := s.residentService.AccessHistory(r.Context(), id, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request, id int64) {
	resp, err := s.residentService.Alerts(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request, id int64) {
	alertID, err := pathID(r, "alert_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	if err := s.residentService.MarkAlertRead(r.Context(), id, alertID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Alert marked as read"})
}

func (s *Server) handleListVisitors(w http.ResponseWriter, r *http.Request, id int64) {
	resp, err := s.residentService.Visitors(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateVisitor(w http.ResponseWriter, r *http.Request, id int64) {
	var req types.CreateVisitorRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	v, err := s.residentService.CreateVisitor(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.VisitorResponse{Message: "Visitor created", Visitor: v})
}

func (s *Server) handleUpdateVisitor(w http.ResponseWriter, r *http.Request, id int64) {
	visitorID, err := pathID(r, "visitor_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	var req types.UpdateVisitorRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	v, err := s.residentService.UpdateVisitorStatus(r.Context(), id, visitorID, req.Status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.VisitorResponse{Message: "Visitor updated", Visitor: v})
}

func (s *Server) handleDeleteVisitor(w http.ResponseWriter, r *http.Request, id int64) {
	visitorID, err := pathID(r, "visitor_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	if err := s.residentService.DeleteVisitor(r.Context(), id, visitorID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Visitor deleted"})
}

// handleVisitorFace takes a multipart form with the image in field "image".
func (s *Server) handleVisitorFace(w http.ResponseWriter, r *http.Request, id int64) {
	visitorID, err := pathID(r, "visitor_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	if r.ContentLength > s.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds upload limit")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds upload limit")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_upload", "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	name, err := s.residentService.SaveVisitorFace(r.Context(), id, visitorID, header.Header.Get("Content-Type"), file)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Face image uploaded", "image": name})
}
