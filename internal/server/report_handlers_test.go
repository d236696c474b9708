package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"cifconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMessage(t *testing.T) {
	srv, app := newTestServer(t)
	author := registerUser(t, app, "finn@example.com", "finn_anon")
	reporter := registerUser(t, app, "gwen@example.com", "gwen_anon")

	room := createRoom(t, app, author.Token, "Watched", nil)
	msg := sendMessage(t, app, author.Token, room.ID, "questionable content")

	t.Run("files a report with the author derived from the message", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/messages/%d/report", msg.ID), reporter.Token,
			map[string]string{"reason": "inappropriate"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var report models.Report
		decodeBody(t, resp, &report)
		assert.Equal(t, models.ReportStatusPending, report.Status)
		require.NotNil(t, report.ReportedID)
		assert.Equal(t, author.User.ID, *report.ReportedID)
		require.NotNil(t, report.ReporterID)
		assert.Equal(t, reporter.User.ID, *report.ReporterID)
	})

	t.Run("own message cannot be reported", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/messages/%d/report", msg.ID), author.Token,
			map[string]string{"reason": "self-report"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("a reason is required", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/messages/%d/report", msg.ID), reporter.Token,
			map[string]string{"reason": "   "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("system messages cannot be reported", func(t *testing.T) {
		var joinMsg models.Message
		require.NoError(t, srv.db.Where("room_id = ? AND message_type = ?", room.ID, models.MessageTypeJoin).
			First(&joinMsg).Error)

		resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/messages/%d/report", joinMsg.ID), reporter.Token,
			map[string]string{"reason": "noise"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("report survives message deletion", func(t *testing.T) {
		doomed := sendMessage(t, app, author.Token, room.ID, "soon gone")
		resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/messages/%d/report", doomed.ID), reporter.Token,
			map[string]string{"reason": "still on record"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var report models.Report
		decodeBody(t, resp, &report)

		resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/messages/%d", doomed.ID), author.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		kept, err := srv.reportRepo.GetByID(context.Background(), report.ID)
		require.NoError(t, err)
		assert.Nil(t, kept.MessageID, "deleting the message detaches it from the report")
		assert.Equal(t, "still on record", kept.Reason)
	})
}

func TestAdminReports(t *testing.T) {
	srv, app := newTestServer(t)
	admin := registerUser(t, app, "head@example.com", "mod_head")
	promoteToAdmin(t, srv, admin.User.ID)
	author := registerUser(t, app, "hal@example.com", "hal_anon")
	reporter := registerUser(t, app, "iris@example.com", "iris_anon")

	room := createRoom(t, app, author.Token, "Moderated", nil)
	msg := sendMessage(t, app, author.Token, room.ID, "rule-breaking")

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/messages/%d/report", msg.ID), reporter.Token,
		map[string]string{"reason": "spam"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var report models.Report
	decodeBody(t, resp, &report)

	t.Run("non-admin is forbidden", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/admin/reports", reporter.Token, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("lists pending reports", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/admin/reports?status=pending", admin.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Reports []models.Report `json:"reports"`
			Count   int             `json:"count"`
		}
		decodeBody(t, resp, &body)
		require.Equal(t, 1, body.Count)
		assert.Equal(t, report.ID, body.Reports[0].ID)
	})

	t.Run("rejects an unknown status filter", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/admin/reports?status=bogus", admin.Token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("dismiss closes without banning", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/admin/reports/%d/resolve", report.ID), admin.Token,
			map[string]any{"status": "dismissed"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var resolved models.Report
		decodeBody(t, resp, &resolved)
		assert.Equal(t, models.ReportStatusDismissed, resolved.Status)
		require.NotNil(t, resolved.ResolvedBy)
		assert.Equal(t, admin.User.ID, *resolved.ResolvedBy)
		assert.NotNil(t, resolved.ResolvedAt)

		user, err := srv.userRepo.GetByID(context.Background(), author.User.ID)
		require.NoError(t, err)
		assert.False(t, user.IsBanned)
	})

	t.Run("rejects an invalid resolution status", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/admin/reports/%d/resolve", report.ID), admin.Token,
			map[string]any{"status": "pending"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown report is not found", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/admin/reports/99999/resolve", admin.Token,
			map[string]any{"status": "resolved"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestResolveReportWithBan(t *testing.T) {
	srv, app := newTestServer(t)
	admin := registerUser(t, app, "boss@example.com", "mod_boss")
	promoteToAdmin(t, srv, admin.User.ID)
	offender := registerUser(t, app, "jon@example.com", "jon_anon")
	reporter := registerUser(t, app, "kat@example.com", "kat_anon")

	room := createRoom(t, app, offender.Token, "Trouble", nil)

	fileReport := func(t *testing.T, reason string) models.Report {
		t.Helper()
		msg := sendMessage(t, app, offender.Token, room.ID, "offense: "+reason)
		resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/messages/%d/report", msg.ID), reporter.Token,
			map[string]string{"reason": reason})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var report models.Report
		decodeBody(t, resp, &report)
		return report
	}

	t.Run("temporary ban sets an expiry and blocks login", func(t *testing.T) {
		report := fileReport(t, "harassment")
		resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/admin/reports/%d/resolve", report.ID), admin.Token,
			map[string]any{"status": "resolved", "ban_user": true, "ban_duration_hours": 24})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		user, err := srv.userRepo.GetByID(context.Background(), offender.User.ID)
		require.NoError(t, err)
		assert.True(t, user.IsBanned)
		require.NotNil(t, user.BanExpiresAt)
		// The explicit ban reason was omitted, so the report's reason is used.
		assert.Equal(t, "harassment", user.BanReason)

		login := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "jon@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusForbidden, login.StatusCode)
	})

	t.Run("permanent ban has no expiry", func(t *testing.T) {
		require.NoError(t, srv.userRepo.ClearBan(context.Background(), offender.User.ID))

		report := fileReport(t, "repeat offense")
		resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/admin/reports/%d/resolve", report.ID), admin.Token,
			map[string]any{"status": "resolved", "ban_user": true, "ban_reason": "final warning ignored"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		user, err := srv.userRepo.GetByID(context.Background(), offender.User.ID)
		require.NoError(t, err)
		assert.True(t, user.IsBanned)
		assert.Nil(t, user.BanExpiresAt)
		assert.Equal(t, "final warning ignored", user.BanReason)
	})

	t.Run("negative ban duration is rejected", func(t *testing.T) {
		report := fileReport(t, "another one")
		resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/admin/reports/%d/resolve", report.ID), admin.Token,
			map[string]any{"status": "resolved", "ban_user": true, "ban_duration_hours": -1})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
