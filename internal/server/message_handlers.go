package server

import (
	"strings"

	"cifconnect/internal/models"
	"cifconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest represents the message creation request body
type SendMessageRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// GetMessages returns a room's history oldest-first. Only members can read a
// room's messages.
func (s *Server) GetMessages(c *fiber.Ctx) error {
	roomID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	userID := c.Locals("userID").(uint)

	if _, err := s.roomRepo.GetByID(c.Context(), roomID); err != nil {
		return s.respondError(c, err)
	}

	member, err := s.roomRepo.IsMember(c.Context(), roomID, userID)
	if err != nil {
		return s.respondError(c, err)
	}
	if !member {
		return s.respondError(c, models.NewForbiddenError("Join the room to read its messages"))
	}

	limit, offset := parsePagination(c)
	messages, err := s.messageRepo.ListByRoom(c.Context(), roomID, limit, offset)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

// SendMessage posts a chat message to a room. The author's pseudo is
// snapshotted onto the message so later renames don't rewrite history.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	roomID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	user, err := s.currentUser(c)
	if err != nil {
		return s.respondError(c, err)
	}

	if _, err := s.roomRepo.GetByID(c.Context(), roomID); err != nil {
		return s.respondError(c, err)
	}

	member, err := s.roomRepo.IsMember(c.Context(), roomID, user.ID)
	if err != nil {
		return s.respondError(c, err)
	}
	if !member {
		return s.respondError(c, models.NewForbiddenError("Join the room to send messages"))
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	req.Content = strings.TrimSpace(req.Content)
	if err := validation.ValidateMessageContent(req.Content); err != nil {
		return s.respondError(c, models.NewValidationError(err.Error()))
	}

	if req.ParentID != nil {
		parent, err := s.messageRepo.GetByID(c.Context(), *req.ParentID)
		if err != nil {
			return s.respondError(c, err)
		}
		if parent.RoomID != roomID {
			return s.respondError(c, models.NewValidationError("Parent message belongs to another room"))
		}
	}

	msg := &models.Message{
		RoomID:            roomID,
		AuthorID:          user.ID,
		AuthorDisplayName: user.Pseudo,
		Content:           req.Content,
		MessageType:       models.MessageTypeChat,
		ParentID:          req.ParentID,
	}

	if err := s.messageRepo.Create(c.Context(), msg); err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(msg)
}

// DeleteMessage removes a message. Only its author or an admin may delete it,
// and join/quit notices cannot be deleted.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	messageID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	user, err := s.currentUser(c)
	if err != nil {
		return s.respondError(c, err)
	}

	msg, err := s.messageRepo.GetByID(c.Context(), messageID)
	if err != nil {
		return s.respondError(c, err)
	}

	if msg.IsSystem() {
		return s.respondError(c, models.NewForbiddenError("System messages cannot be deleted"))
	}
	if msg.AuthorID != user.ID && !user.IsAdmin() {
		return s.respondError(c, models.NewForbiddenError("You can only delete your own messages"))
	}

	if err := s.messageRepo.Delete(c.Context(), messageID); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Message deleted"})
}
