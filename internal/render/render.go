// Package render draws view snapshots as terminal tables.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/BrandonDHaskell/Portunus/condo/internal/apiclient"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
	"github.com/BrandonDHaskell/Portunus/condo/internal/records"
	"github.com/BrandonDHaskell/Portunus/condo/internal/views"
)

const (
	colorGreen  = "#50FA7B"
	colorRed    = "#FF5555"
	colorYellow = "#F1FA8C"
	colorGrey   = "#6272A4"
	colorCyan   = "#8BE9FD"
)

// Placeholder for empty cells.
const dash = "-"

type styles struct {
	title, label, muted, failure lipgloss.Style
	header, cell, progress       lipgloss.Style
	badges                       map[string]lipgloss.Style
}

func newStyles(lr *lipgloss.Renderer) styles {
	green := lr.NewStyle().Foreground(lipgloss.Color(colorGreen)).Bold(true)
	red := lr.NewStyle().Foreground(lipgloss.Color(colorRed)).Bold(true)
	yellow := lr.NewStyle().Foreground(lipgloss.Color(colorYellow))
	grey := lr.NewStyle().Foreground(lipgloss.Color(colorGrey))

	return styles{
		title:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color(colorCyan)),
		label:    lr.NewStyle().Bold(true),
		muted:    grey,
		failure:  red,
		header:   lr.NewStyle().Bold(true).Padding(0, 1),
		cell:     lr.NewStyle().Padding(0, 1),
		progress: yellow,
		badges: map[string]lipgloss.Style{
			types.ResultGranted:     green,
			types.ResultDenied:      red,
			types.AlertUnread:       yellow,
			types.AlertRead:         grey,
			types.VisitorApproved:   green,
			types.VisitorPending:    yellow,
			types.VisitorInBuilding: green,
		},
	}
}

// Renderer writes to one output.  Colour is decided by the output: a pipe
// or buffer gets plain text.
type Renderer struct {
	w   io.Writer
	st  styles
	loc *time.Location
	now func() time.Time
}

func New(w io.Writer, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{
		w:   w,
		st:  newStyles(lipgloss.NewRenderer(w)),
		loc: loc,
		now: time.Now,
	}
}

// Badge colours a category value.
func (r *Renderer) Badge(category string) string {
	if category == "" {
		return dash
	}
	if s, ok := r.st.badges[category]; ok {
		return s.Render(category)
	}
	return category
}

// Failure prints a failed fetch.
func (r *Renderer) Failure(kind views.Kind, res apiclient.Result) {
	msg := res.Message
	if msg == "" {
		msg = "request failed"
	}
	fmt.Fprintf(r.w, "%s %s\n", r.st.failure.Render("✗ "+string(kind)+":"), msg)
}

// Snapshot renders a loaded view: title, summary and table.
func (r *Renderer) Snapshot(snap views.Snapshot) {
	if !snap.Result.OK {
		r.Failure(snap.Kind, snap.Result)
		return
	}

	fmt.Fprintln(r.w, r.st.title.Render(title(snap.Kind)))
	r.summary(snap)

	switch snap.Kind {
	case views.KindAccessHistory:
		r.accessHistory(snap.Filtered)
	case views.KindAlerts:
		r.Alerts(snap.Filtered)
	case views.KindAttendance:
		r.attendance(snap.Filtered)
	case views.KindSchedule:
		r.Schedule(views.ScheduleDays(snap.Filtered))
	case views.KindVisitors:
		r.visitors(snap.Filtered)
	case views.KindSecurityAccess:
		r.securityAccess(snap.Filtered)
	case views.KindSecurityVisitors:
		r.securityVisitors(snap.Filtered)
	default:
		r.generic(snap.Filtered)
	}
}

// Dashboard renders each snapshot in turn.
func (r *Renderer) Dashboard(snaps []views.Snapshot) {
	for i, s := range snaps {
		if i > 0 {
			fmt.Fprintln(r.w)
		}
		r.Snapshot(s)
	}
	fmt.Fprintln(r.w, r.st.muted.Render("updated "+r.now().In(r.loc).Format("15:04:05")))
}

func title(k views.Kind) string {
	words := strings.Split(string(k), "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (r *Renderer) summary(snap views.Snapshot) {
	s := snap.Summary
	var parts []string
	add := func(label, value string) {
		parts = append(parts, r.st.label.Render(label+":")+" "+value)
	}

	add("Total", humanize.Comma(int64(s.Total)))
	switch snap.Kind {
	case views.KindAccessHistory:
		add("Granted", humanize.Comma(int64(s.ByCategory[types.ResultGranted])))
		add("Denied", humanize.Comma(int64(s.ByCategory[types.ResultDenied])))
		add("This month", humanize.Comma(int64(s.ThisMonth)))
		add("Today", humanize.Comma(int64(s.Today)))
	case views.KindAlerts:
		add("Unread", humanize.Comma(int64(s.ByCategory[types.AlertUnread])))
	case views.KindAttendance:
		add("Hours this week", hours(s.WeekHours))
		add("Hours this month", hours(s.MonthHours))
		add("Days worked", humanize.Comma(int64(s.DaysWorked)))
	case views.KindVisitors:
		add("Approved", humanize.Comma(int64(s.ByCategory[types.VisitorApproved])))
		add("Pending", humanize.Comma(int64(s.ByCategory[types.VisitorPending])))
	case views.KindSchedule:
		add("Days", humanize.Comma(int64(s.DaysWithEntries)))
	case views.KindSecurityAccess:
		add("Granted", humanize.Comma(int64(s.ByCategory[types.ResultGranted])))
		add("Denied", humanize.Comma(int64(s.ByCategory[types.ResultDenied])))
		add("Today", humanize.Comma(int64(s.Today)))
	case views.KindSecurityVisitors:
		add("In building", humanize.Comma(int64(s.ByCategory[types.VisitorInBuilding])))
	}
	fmt.Fprintln(r.w, strings.Join(parts, "   "))
}

// Statistics prints the security desk counters.
func (r *Renderer) Statistics(st types.SecurityStatistics) {
	fmt.Fprintln(r.w, r.st.title.Render("Building"))
	parts := []string{
		r.st.label.Render("Residents:") + " " + humanize.Comma(int64(st.TotalResidents)),
		r.st.label.Render("Visitors in building:") + " " + humanize.Comma(int64(st.ActiveVisitors)),
		r.st.label.Render("Access today:") + " " + humanize.Comma(int64(st.TodayAccessCount)),
		r.st.label.Render("Unread alerts today:") + " " + humanize.Comma(int64(st.AlertsToday)),
	}
	fmt.Fprintln(r.w, strings.Join(parts, "   "))
}

func hours(v float64) string {
	return humanize.FtoaWithDigits(v, 2) + "h"
}

// when formats a record timestamp.  Unparseable values print as received.
func (r *Renderer) when(ts records.Timestamp) string {
	if !ts.Valid {
		if ts.Raw == "" {
			return dash
		}
		return ts.Raw
	}
	return ts.Time.In(r.loc).Format("2006-01-02 15:04")
}

// ago is the time relative to now, e.g. "3 hours ago".
func (r *Renderer) ago(ts records.Timestamp) string {
	if !ts.Valid {
		return dash
	}
	return humanize.RelTime(ts.Time, r.now(), "ago", "from now")
}

func (r *Renderer) table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(r.w, r.st.muted.Render("No records."))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.st.muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.st.header
			}
			return r.st.cell
		})
	fmt.Fprintln(r.w, t.Render())
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return dash
	}
	return s
}
