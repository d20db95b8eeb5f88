package types

const (
	AlertUnread = "UNREAD"
	AlertRead   = "READ"
)

type Alert struct {
	AlertID     int64  `json:"alert_id"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type AlertsResponse struct {
	ResidentID int64   `json:"resident_id"`
	Alerts     []Alert `json:"alerts"`
}

const (
	VisitorPending  = "PENDING"
	VisitorApproved = "APPROVED"
	VisitorDenied   = "DENIED"
)

type Visitor struct {
	VisitorID     int64  `json:"visitor_id"`
	VisitorName   string `json:"visitor_name"`
	ContactNumber string `json:"contact_number,omitempty"`
	VisitingUnit  string `json:"visiting_unit,omitempty"`
	Status        string `json:"status"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	HasFaceImage  bool   `json:"has_face_image"`
}

type VisitorsResponse struct {
	ResidentID int64     `json:"resident_id"`
	Visitors   []Visitor `json:"visitors"`
}

// CreateVisitorRequest is the body of POST /api/resident/{id}/visitors.
type CreateVisitorRequest struct {
	VisitorName   string `json:"visitor_name"`
	ContactNumber string `json:"contact_number"`
	VisitingUnit  string `json:"visiting_unit"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

// UpdateVisitorRequest is the body of PUT /api/resident/{id}/visitors/{vid}.
type UpdateVisitorRequest struct {
	Status string `json:"status"`
}

type VisitorResponse struct {
	Message string  `json:"message"`
	Visitor Visitor `json:"visitor"`
}
