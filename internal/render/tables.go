package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/BrandonDHaskell/Portunus/condo/internal/records"
	"github.com/BrandonDHaskell/Portunus/condo/internal/views"
)

func (r *Renderer) accessHistory(list []records.Record) {
	rows := make([][]string, 0, len(list))
	for _, rec := range list {
		rows = append(rows, []string{
			r.when(rec.Timestamp),
			rec.Label("door", dash),
			r.Badge(rec.Category),
			rec.Label("reason", dash),
		})
	}
	r.table([]string{"Time", "Door", "Result", "Reason"}, rows)
}

// Alerts renders an alert list, e.g. the local copy held by an AlertBox.
func (r *Renderer) Alerts(list []records.Record) {
	rows := make([][]string, 0, len(list))
	for _, rec := range list {
		rows = append(rows, []string{
			orDash(rec.ID),
			r.when(rec.Timestamp),
			r.ago(rec.Timestamp),
			rec.Label("description", dash),
			r.Badge(rec.Category),
		})
	}
	r.table([]string{"ID", "Time", "", "Description", "Status"}, rows)
}

func (r *Renderer) attendance(list []records.Record) {
	rows := make([][]string, 0, len(list))
	for _, rec := range list {
		exit := r.when(records.ParseTimestamp(rec.Label("exit_time", ""), r.loc))
		h := dash
		if rec.Value != nil {
			h = hours(*rec.Value)
		}
		if !rec.Closed {
			exit = r.st.progress.Render("in progress")
		}
		rows = append(rows, []string{
			r.when(rec.Timestamp),
			exit,
			h,
			rec.Label("location", dash),
			rec.Label("verification_method", dash),
		})
	}
	r.table([]string{"Entry", "Exit", "Hours", "Location", "Method"}, rows)
}

// Schedule renders shifts grouped by day with a per-day total.
func (r *Renderer) Schedule(days []records.Group[views.Shift]) {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		for i, s := range d.Items {
			date := ""
			if i == 0 {
				date = d.Date
			}
			length := records.FormatShift(s.Duration)
			if s.Err != nil {
				length = r.st.failure.Render("invalid")
			}
			rows = append(rows, []string{date, orDash(s.Start), orDash(s.End), length, orDash(s.Task)})
		}
		if len(d.Items) > 1 {
			rows = append(rows, []string{"", "", "total", records.FormatShift(views.DayTotal(d)), ""})
		}
	}
	r.table([]string{"Date", "Start", "End", "Length", "Task"}, rows)
}

func (r *Renderer) visitors(list []records.Record) {
	rows := make([][]string, 0, len(list))
	for _, rec := range list {
		face := "no"
		if rec.Label("has_face_image", "") == "true" {
			face = "yes"
		}
		rows = append(rows, []string{
			orDash(rec.ID),
			rec.Label("visitor_name", dash),
			rec.Label("contact_number", dash),
			rec.Label("visiting_unit", dash),
			r.when(rec.Timestamp),
			r.when(records.ParseTimestamp(rec.Label("end_time", ""), r.loc)),
			r.Badge(rec.Category),
			face,
		})
	}
	r.table([]string{"ID", "Name", "Contact", "Unit", "Start", "End", "Status", "Face"}, rows)
}

func (r *Renderer) securityAccess(list []records.Record) {
	rows := make([][]string, 0, len(list))
	for _, rec := range list {
		rows = append(rows, []string{
			r.when(rec.Timestamp),
			rec.Label("person_name", dash),
			rec.Label("person_type", dash),
			rec.Label("access_point", dash),
			r.Badge(rec.Category),
			rec.Label("reason", dash),
		})
	}
	r.table([]string{"Time", "Person", "Type", "Access point", "Result", "Reason"}, rows)
}

func (r *Renderer) securityVisitors(list []records.Record) {
	rows := make([][]string, 0, len(list))
	for _, rec := range list {
		rows = append(rows, []string{
			rec.Label("visitor_name", dash),
			rec.Label("visiting_unit", dash),
			r.when(rec.Timestamp),
			r.when(records.ParseTimestamp(rec.Label("expected_exit", ""), r.loc)),
			r.Badge(rec.Category),
		})
	}
	r.table([]string{"Visitor", "Unit", "Entered", "Expected exit", "Status"}, rows)
}

// generic handles views added through a table override.
func (r *Renderer) generic(list []records.Record) {
	rows := make([][]string, 0, len(list))
	for _, rec := range list {
		var labels []string
		for _, k := range slices.Sorted(maps.Keys(rec.Labels)) {
			if v := rec.Labels[k]; v != "" {
				labels = append(labels, fmt.Sprintf("%s=%s", k, v))
			}
		}
		rows = append(rows, []string{orDash(rec.ID), r.when(rec.Timestamp), r.Badge(rec.Category), strings.Join(labels, " ")})
	}
	r.table([]string{"ID", "Time", "Category", "Details"}, rows)
}
