package types

// AccessRequest is posted by a door camera module after a face match
// attempt.  ResidentID is empty when the recognizer found no match.
type AccessRequest struct {
	ModuleID    string   `json:"module_id"`
	ResidentID  int64    `json:"resident_id,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	RequestedAt string   `json:"requested_at,omitempty"` // optional device timestamp
}

type AccessResponse struct {
	OK         bool   `json:"ok"`
	Known      bool   `json:"known"`
	Granted    bool   `json:"granted"`
	Reason     string `json:"reason,omitempty"`
	ModuleID   string `json:"module_id"`
	Door       string `json:"door,omitempty"`
	ServerTime string `json:"server_time"`
}

// Access results as they appear in resident access history.
const (
	ResultGranted = "GRANTED"
	ResultDenied  = "DENIED"
)

// AccessRecord is one row of GET /api/resident/{id}/access-history.
type AccessRecord struct {
	Timestamp string `json:"timestamp"`
	Door      string `json:"door"`
	Result    string `json:"result"`
	Reason    string `json:"reason,omitempty"`
}

type AccessHistoryResponse struct {
	ResidentID int64          `json:"resident_id"`
	Records    []AccessRecord `json:"records"`
}
