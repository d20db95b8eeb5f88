package types

// AttendanceRecord is one entry/exit pair.  ExitTime and DurationHours are
// absent while the shift is in progress.
type AttendanceRecord struct {
	AttendanceID       int64    `json:"attendance_id"`
	EntryTime          string   `json:"entry_time"`
	ExitTime           *string  `json:"exit_time"`
	DurationHours      *float64 `json:"duration_hours"`
	Location           string   `json:"location,omitempty"`
	VerificationMethod string   `json:"verification_method,omitempty"`
}

type AttendanceResponse struct {
	StaffID int64              `json:"staff_id"`
	Records []AttendanceRecord `json:"records"`
}

type ScheduleEntry struct {
	ScheduleID      int64  `json:"schedule_id"`
	ShiftDate       string `json:"shift_date"`
	ShiftStart      string `json:"shift_start"`
	ShiftEnd        string `json:"shift_end"`
	TaskDescription string `json:"task_description,omitempty"`
}

type ScheduleResponse struct {
	StaffID   int64           `json:"staff_id"`
	Schedules []ScheduleEntry `json:"schedules"`
}

const (
	AttendanceEntry = "entry"
	AttendanceExit  = "exit"
)

// RecordAttendanceRequest is the body of POST /api/staff/attendance/record.
// StaffID defaults to the caller's own staff id.
type RecordAttendanceRequest struct {
	StaffID  int64  `json:"staff_id,omitempty"`
	Action   string `json:"action"`
	Location string `json:"location,omitempty"`
	Method   string `json:"verification_method,omitempty"`
}

type RecordAttendanceResponse struct {
	Message string `json:"message"`
	StaffID int64  `json:"staff_id"`
	AttendanceRecord
}
