package server

import (
	"strings"

	"cifconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleReactionRequest represents the reaction toggle request body
type ToggleReactionRequest struct {
	Emoji string `json:"emoji"`
}

// ToggleReaction adds the user's reaction to a message, or removes it when one
// already exists. Join/quit notices cannot be reacted to.
func (s *Server) ToggleReaction(c *fiber.Ctx) error {
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
		return s.respondError(c, models.NewForbiddenError("System messages cannot be reacted to"))
	}

	member, err := s.roomRepo.IsMember(c.Context(), msg.RoomID, userID)
	if err != nil {
		return s.respondError(c, err)
	}
	if !member {
		return s.respondError(c, models.NewForbiddenError("Join the room to react to its messages"))
	}

	var req ToggleReactionRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}
	req.Emoji = strings.TrimSpace(req.Emoji)
	if req.Emoji == "" {
		return s.respondError(c, models.NewValidationError("Emoji is required"))
	}

	reaction, removed, err := s.reactionRepo.Toggle(c.Context(), messageID, userID, req.Emoji)
	if err != nil {
		return s.respondError(c, err)
	}

	if removed {
		return c.JSON(fiber.Map{"message": "Reaction removed"})
	}
	return c.Status(fiber.StatusCreated).JSON(reaction)
}

// RemoveReaction deletes a reaction by ID. Only the user who placed it may
// remove it this way.
func (s *Server) RemoveReaction(c *fiber.Ctx) error {
	reactionID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	userID := c.Locals("userID").(uint)

	reaction, err := s.reactionRepo.GetByID(c.Context(), reactionID)
	if err != nil {
		return s.respondError(c, err)
	}
	if reaction.UserID != userID {
		return s.respondError(c, models.NewForbiddenError("You can only remove your own reactions"))
	}

	if err := s.reactionRepo.Delete(c.Context(), reactionID); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Reaction removed"})
}
