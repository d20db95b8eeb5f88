package types

// Roles carried in tokens and session payloads.
const (
	RoleResident = "RESIDENT"
	RoleStaff    = "STAFF"
	RoleSecurity = "SECURITY"
	RoleVisitor  = "VISITOR"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is the account payload returned by login and check-session.  Which
// of ResidentID / StaffID is set depends on Role.
type User struct {
	UserID     int64  `json:"user_id"`
	ResidentID *int64 `json:"resident_id,omitempty"`
	StaffID    *int64 `json:"staff_id,omitempty"`
	Username   string `json:"username"`
	FullName   string `json:"full_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Position   string `json:"position,omitempty"`
	Role       string `json:"role"`
}

type LoginResponse struct {
	User
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}

type SessionResponse struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Missing []string `json:"missing,omitempty"`
}
