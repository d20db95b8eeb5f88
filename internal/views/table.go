// Package views runs the per-screen pipeline: fetch a resource list, map it
// onto records, filter, aggregate.  Every screen is an entry in a Table
// rather than its own implementation.
package views

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

type Kind string

const (
	KindAccessHistory Kind = "access-history"
	KindAlerts        Kind = "alerts"
	KindAttendance    Kind = "attendance"
	KindSchedule      Kind = "schedule"
	KindVisitors      Kind = "visitors"

	KindSecurityAccess   Kind = "security-access"
	KindSecurityVisitors Kind = "security-visitors"
)

// Fields maps response attributes onto record fields.  Empty names are
// skipped.
type Fields struct {
	ID        string   `yaml:"id,omitempty"`
	Timestamp string   `yaml:"timestamp"`
	Category  string   `yaml:"category,omitempty"`
	Value     string   `yaml:"value,omitempty"`
	Closed    string   `yaml:"closed,omitempty"`
	Labels    []string `yaml:"labels,omitempty"`
}

// Spec describes one view.
type Spec struct {
	Roles []string `yaml:"roles"`

	// Path may contain {id}, replaced by the session's canonical id.
	Path string `yaml:"path"`

	// Key names the list in the response envelope.
	Key string `yaml:"key"`

	// DateQuery forwards From/To as start_date/end_date so the server can
	// narrow the result too.
	DateQuery bool `yaml:"date_query,omitempty"`

	// Params are fixed query parameters sent with every fetch.
	Params map[string]string `yaml:"params,omitempty"`

	Fields Fields `yaml:"fields"`
}

func (s Spec) allows(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Table map[Kind]Spec

var residentOnly = []string{types.RoleResident}
var staffRoles = []string{types.RoleStaff, types.RoleSecurity}
var securityOnly = []string{types.RoleSecurity}

// DefaultTable describes the endpoints of the condo backend.
func DefaultTable() Table {
	return Table{
		KindAccessHistory: {
			Roles:     residentOnly,
			Path:      "/api/resident/{id}/access-history",
			Key:       "records",
			DateQuery: true,
			Fields: Fields{
				Timestamp: "timestamp",
				Category:  "result",
				Labels:    []string{"door", "reason"},
			},
		},
		KindAlerts: {
			Roles: residentOnly,
			Path:  "/api/resident/{id}/alerts",
			Key:   "alerts",
			Fields: Fields{
				ID:        "alert_id",
				Timestamp: "timestamp",
				Category:  "status",
				Labels:    []string{"description"},
			},
		},
		KindVisitors: {
			Roles: residentOnly,
			Path:  "/api/resident/{id}/visitors",
			Key:   "visitors",
			Fields: Fields{
				ID:        "visitor_id",
				Timestamp: "start_time",
				Category:  "status",
				Labels:    []string{"visitor_name", "contact_number", "visiting_unit", "end_time", "has_face_image"},
			},
		},
		KindAttendance: {
			Roles:     staffRoles,
			Path:      "/api/staff/{id}/attendance",
			Key:       "records",
			DateQuery: true,
			Fields: Fields{
				ID:        "attendance_id",
				Timestamp: "entry_time",
				Value:     "duration_hours",
				Closed:    "exit_time",
				Labels:    []string{"exit_time", "location", "verification_method"},
			},
		},
		KindSchedule: {
			Roles:     staffRoles,
			Path:      "/api/staff/{id}/schedule",
			Key:       "schedules",
			DateQuery: true,
			Fields: Fields{
				ID:        "schedule_id",
				Timestamp: "shift_date",
				Labels:    []string{"shift_date", "shift_start", "shift_end", "task_description"},
			},
		},
		KindSecurityAccess: {
			Roles:     securityOnly,
			Path:      "/api/security/recent-access",
			Key:       "logs",
			DateQuery: true,
			Params:    map[string]string{"limit": "200"},
			Fields: Fields{
				ID:        "log_id",
				Timestamp: "access_time",
				Category:  "access_result",
				Labels:    []string{"person_name", "person_type", "access_point", "reason"},
			},
		},
		KindSecurityVisitors: {
			Roles: securityOnly,
			Path:  "/api/security/current-visitors",
			Key:   "visitors",
			Fields: Fields{
				ID:        "visitor_id",
				Timestamp: "entry_time",
				Category:  "status",
				Labels:    []string{"visitor_name", "visiting_unit", "expected_exit"},
			},
		},
	}
}

// Kinds lists the views role may open, sorted.
func (t Table) Kinds(role string) []Kind {
	var out []Kind
	for k, s := range t {
		if s.allows(role) {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LoadTable returns DefaultTable with the entries of the YAML file at path
// laid over it.  Non-empty override fields replace the defaults; an
// unknown kind adds a new view.  An empty path or a missing file yields
// the defaults.
func LoadTable(path string) (Table, error) {
	t := DefaultTable()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read view table: %w", err)
	}

	var file struct {
		Views map[Kind]Spec `yaml:"views"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse view table %s: %w", path, err)
	}

	for k, o := range file.Views {
		merged := merge(t[k], o)
		if merged.Path == "" || merged.Key == "" || merged.Fields.Timestamp == "" {
			return nil, fmt.Errorf("view %q: path, key and fields.timestamp are required", k)
		}
		t[k] = merged
	}
	return t, nil
}

func merge(base, o Spec) Spec {
	if len(o.Roles) > 0 {
		base.Roles = o.Roles
	}
	if o.Path != "" {
		base.Path = o.Path
	}
	if o.Key != "" {
		base.Key = o.Key
	}
	if o.DateQuery {
		base.DateQuery = true
	}
	if len(o.Params) > 0 {
		params := make(map[string]string, len(base.Params)+len(o.Params))
		for k, v := range base.Params {
			params[k] = v
		}
		for k, v := range o.Params {
			params[k] = v
		}
		base.Params = params
	}

	f := &base.Fields
	override(&f.ID, o.Fields.ID)
	override(&f.Timestamp, o.Fields.Timestamp)
	override(&f.Category, o.Fields.Category)
	override(&f.Value, o.Fields.Value)
	override(&f.Closed, o.Fields.Closed)
	if len(o.Fields.Labels) > 0 {
		f.Labels = o.Fields.Labels
	}
	return base
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
