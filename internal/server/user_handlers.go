package server

import (
	"strings"

	"cifconnect/internal/models"
	"cifconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// UpdatePseudoRequest represents the rename request body
type UpdatePseudoRequest struct {
	Pseudo string `json:"pseudo"`
}

// GetMyProfile returns the authenticated user's profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyPseudo renames the authenticated user. Messages sent before the
// rename keep their snapshotted display name.
func (s *Server) UpdateMyPseudo(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req UpdatePseudoRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	req.Pseudo = strings.TrimSpace(req.Pseudo)
	if err := validation.ValidatePseudo(req.Pseudo); err != nil {
		return s.respondError(c, models.NewValidationError(err.Error()))
	}

	user, err := s.userRepo.UpdatePseudo(c.Context(), userID, req.Pseudo)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(user)
}

// GetAdminUsers lists accounts for the moderation dashboard, with optional
// search over pseudo and email.
func (s *Server) GetAdminUsers(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	users, err := s.userRepo.List(c.Context(), search, limit, offset)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

// UnbanUser lifts a user's ban
func (s *Server) UnbanUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.userRepo.ClearBan(c.Context(), userID); err != nil {
		return s.respondError(c, err)
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "User unbanned",
		"user":    user,
	})
}
