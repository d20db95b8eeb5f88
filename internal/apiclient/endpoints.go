package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

// DateQuery builds the start_date / end_date parameters (YYYY-MM-DD).
// Empty values are omitted.
func DateQuery(from, to string) url.Values {
	q := url.Values{}
	if from != "" {
		q.Set("start_date", from)
	}
	if to != "" {
		q.Set("end_date", to)
	}
	return q
}

func (c *Client) Login(ctx context.Context, username, password string) (types.LoginResponse, error) {
	var out types.LoginResponse
	err := c.sendJSON(ctx, http.MethodPost, "/api/auth/login", types.LoginRequest{Username: username, Password: password}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) CheckSession(ctx context.Context) (types.SessionResponse, error) {
	var out types.SessionResponse
	err := c.GetJSON(ctx, "/api/auth/check-session", nil, &out)
	return out, err
}

func (c *Client) AccessHistory(ctx context.Context, residentID int64, from, to string) ([]types.AccessRecord, error) {
	var out types.AccessHistoryResponse
	err := c.GetJSON(ctx, fmt.Sprintf("/api/resident/%d/access-history", residentID), DateQuery(from, to), &out)
	return out.Records, err
}

func (c *Client) Alerts(ctx context.Context, residentID int64) ([]types.Alert, error) {
	var out types.AlertsResponse
	err := c.GetJSON(ctx, fmt.Sprintf("/api/resident/%d/alerts", residentID), nil, &out)
	return out.Alerts, err
}

func (c *Client) MarkAlertRead(ctx context.Context, residentID, alertID int64) error {
	return c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/api/resident/%d/alerts/%d/read", residentID, alertID), nil, nil)
}

func (c *Client) Visitors(ctx context.Context, residentID int64) ([]types.Visitor, error) {
	var out types.VisitorsResponse
	err := c.GetJSON(ctx, fmt.Sprintf("/api/resident/%d/visitors", residentID), nil, &out)
	return out.Visitors, err
}

func (c *Client) CreateVisitor(ctx context.Context, residentID int64, req types.CreateVisitorRequest) (types.Visitor, error) {
	var out types.VisitorResponse
	err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/api/resident/%d/visitors", residentID), req, &out)
	return out.Visitor, err
}

func (c *Client) UpdateVisitorStatus(ctx context.Context, residentID, visitorID int64, status string) (types.Visitor, error) {
	var out types.VisitorResponse
	err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/api/resident/%d/visitors/%d", residentID, visitorID),
		types.UpdateVisitorRequest{Status: status}, &out)
	return out.Visitor, err
}

func (c *Client) DeleteVisitor(ctx context.Context, residentID, visitorID int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/resident/%d/visitors/%d", residentID, visitorID), nil, nil)
}

// UploadVisitorFace posts an image as the multipart field "image".
func (c *Client) UploadVisitorFace(ctx context.Context, residentID, visitorID int64, filename, contentType string, img io.Reader) error {
	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, img)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/resident/%d/visitors/%d/face-image", residentID, visitorID),
		nil, pr, mw.FormDataContentType(), nil)
}

func (c *Client) Attendance(ctx context.Context, staffID int64, from, to string) ([]types.AttendanceRecord, error) {
	var out types.AttendanceResponse
	err := c.GetJSON(ctx, fmt.Sprintf("/api/staff/%d/attendance", staffID), DateQuery(from, to), &out)
	return out.Records, err
}

func (c *Client) Schedule(ctx context.Context, staffID int64, from, to string) ([]types.ScheduleEntry, error) {
	var out types.ScheduleResponse
	err := c.GetJSON(ctx, fmt.Sprintf("/api/staff/%d/schedule", staffID), DateQuery(from, to), &out)
	return out.Schedules, err
}

// RecordAttendance posts an entry or exit for the caller, or for staffID
// when it is non-zero.
func (c *Client) RecordAttendance(ctx context.Context, staffID int64, action, location string) (types.RecordAttendanceResponse, error) {
	var out types.RecordAttendanceResponse
	err := c.sendJSON(ctx, http.MethodPost, "/api/staff/attendance/record", types.RecordAttendanceRequest{
		StaffID:  staffID,
		Action:   action,
		Location: location,
	}, &out)
	return out, err
}

func (c *Client) SecurityStatistics(ctx context.Context) (types.SecurityStatistics, error) {
	var out types.SecurityStatistics
	err := c.GetJSON(ctx, "/api/security/statistics", nil, &out)
	return out, err
}

// RecentAccess lists building-wide door decisions.  limit <= 0 leaves the
// server default of 10.
func (c *Client) RecentAccess(ctx context.Context, limit int, from, to string) ([]types.AccessLogEntry, error) {
	q := DateQuery(from, to)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out types.RecentAccessResponse
	err := c.GetJSON(ctx, "/api/security/recent-access", q, &out)
	return out.Logs, err
}

func (c *Client) CurrentVisitors(ctx context.Context) ([]types.CurrentVisitor, error) {
	var out types.CurrentVisitorsResponse
	err := c.GetJSON(ctx, "/api/security/current-visitors", nil, &out)
	return out.Visitors, err
}
