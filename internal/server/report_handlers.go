package server

import (
	"strings"
	"time"

	"cifconnect/internal/models"
	"cifconnect/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// ReportMessageRequest represents the report creation request body
type ReportMessageRequest struct {
	Reason string `json:"reason"`
}

// ResolveReportRequest represents the admin resolution request body. When
// BanUser is set the reported user is banned; a zero BanDurationHours makes
// the ban permanent.
type ResolveReportRequest struct {
	Status           string `json:"status"`
	BanUser          bool   `json:"ban_user"`
	BanDurationHours int    `json:"ban_duration_hours"`
	BanReason        string `json:"ban_reason"`
}

// ReportMessage files a moderation report against a message. The reported
// user is derived from the message's author, never from the request.
func (s *Server) ReportMessage(c *fiber.Ctx) error {
	messageID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	userID := c.Locals("userID").(uint)

	msg, err := s.messageRepo.GetByID(c.Context(), messageID)
	if err != nil {
		return s.respondError(c, err)
	}
	if msg.IsSystem() {
		return s.respondError(c, models.NewForbiddenError("System messages cannot be reported"))
	}
	if msg.AuthorID == userID {
		return s.respondError(c, models.NewValidationError("You cannot report your own message"))
	}

	var req ReportMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		return s.respondError(c, models.NewValidationError("A reason is required"))
	}

	report := &models.Report{
		ReporterID: &userID,
		ReportedID: &msg.AuthorID,
		MessageID:  &msg.ID,
		Reason:     req.Reason,
		Status:     models.ReportStatusPending,
	}

	if err := s.reportRepo.Create(c.Context(), report); err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetAdminReports lists moderation reports newest-first, optionally filtered
// by status.
func (s *Server) GetAdminReports(c *fiber.Ctx) error {
	status := c.Query("status")
	switch status {
	case "", models.ReportStatusPending, models.ReportStatusResolved, models.ReportStatusDismissed:
	default:
		return s.respondError(c, models.NewValidationError("Unknown report status"))
	}

	limit, offset := parsePagination(c)
	reports, err := s.reportRepo.List(c.Context(), status, limit, offset)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"count":   len(reports),
	})
}

// ResolveAdminReport closes a report as resolved or dismissed, optionally
// banning the reported user in the same transaction.
func (s *Server) ResolveAdminReport(c *fiber.Ctx) error {
	reportID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	adminID := c.Locals("userID").(uint)

	var req ResolveReportRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	if req.Status != models.ReportStatusResolved && req.Status != models.ReportStatusDismissed {
		return s.respondError(c, models.NewValidationError("Status must be resolved or dismissed"))
	}
	if req.BanDurationHours < 0 {
		return s.respondError(c, models.NewValidationError("Ban duration cannot be negative"))
	}

	var ban *repository.BanAction
	if req.BanUser {
		ban = &repository.BanAction{Reason: strings.TrimSpace(req.BanReason)}
		if req.BanDurationHours > 0 {
			expires := time.Now().UTC().Add(time.Duration(req.BanDurationHours) * time.Hour)
			ban.ExpiresAt = &expires
		}
	}

	report, err := s.reportRepo.Resolve(c.Context(), reportID, req.Status, adminID, ban)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(report)
}
