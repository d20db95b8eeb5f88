package types

// Person types reported on the security access log.
const (
	PersonResident = "RESIDENT"
	PersonUnknown  = "UNKNOWN"
)

// VisitorInBuilding marks an approved visitor whose window covers now.
const VisitorInBuilding = "IN_BUILDING"

type SecurityStatistics struct {
	TotalResidents   int `json:"total_residents"`
	ActiveVisitors   int `json:"active_visitors"`
	TodayAccessCount int `json:"today_access_count"`
	AlertsToday      int `json:"alerts_today"`
}

// AccessLogEntry is one building-wide door decision.
type AccessLogEntry struct {
	LogID                 int64    `json:"log_id"`
	AccessTime            string   `json:"access_time"`
	PersonName            string   `json:"person_name"`
	PersonType            string   `json:"person_type"`
	AccessPoint           string   `json:"access_point"`
	AccessResult          string   `json:"access_result"`
	Reason                string   `json:"reason,omitempty"`
	RecognitionConfidence *float64 `json:"recognition_confidence"`
}

type RecentAccessResponse struct {
	Logs []AccessLogEntry `json:"logs"`
}

type CurrentVisitor struct {
	VisitorID    int64  `json:"visitor_id"`
	VisitorName  string `json:"visitor_name"`
	VisitingUnit string `json:"visiting_unit"`
	EntryTime    string `json:"entry_time"`
	ExpectedExit string `json:"expected_exit"`
	Status       string `json:"status"`
}

type CurrentVisitorsResponse struct {
	Visitors []CurrentVisitor `json:"visitors"`
}
