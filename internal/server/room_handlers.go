package server

import (
	"strings"
	"time"

	"cifconnect/internal/cache"
	"cifconnect/internal/models"
	"cifconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	roomDirectoryCacheKey = "rooms:directory"
	roomDirectoryCacheTTL = time.Minute
)

// CreateRoomRequest represents the room creation request body
type CreateRoomRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	AccessKey   *string `json:"access_key"`
}

// UpdateRoomRequest represents the partial room update request body.
// Omitted fields are left untouched.
type UpdateRoomRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	AccessKey   *string `json:"access_key"`
}

// JoinRoomRequest carries the access key for private rooms
type JoinRoomRequest struct {
	AccessKey string `json:"access_key"`
}

// GetRooms returns the room directory. The listing is identical for every
// user, so it is served cache-aside from Redis.
func (s *Server) GetRooms(c *fiber.Ctx) error {
	var rooms []models.Room
	err := cache.CacheAside(c.Context(), roomDirectoryCacheKey, &rooms, roomDirectoryCacheTTL, func() error {
		var ferr error
		rooms, ferr = s.roomRepo.List(c.Context())
		return ferr
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// GetMyRooms returns the rooms the authenticated user belongs to
func (s *Server) GetMyRooms(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	rooms, err := s.roomRepo.ListForUser(c.Context(), userID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// CreateRoom creates a room with the authenticated user as creator and first
// member.
func (s *Server) CreateRoom(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateRoomName(req.Name); err != nil {
		return s.respondError(c, models.NewValidationError(err.Error()))
	}
	if req.AccessKey != nil {
		key := strings.TrimSpace(*req.AccessKey)
		if key == "" {
			return s.respondError(c, models.NewValidationError("Access key cannot be blank"))
		}
		req.AccessKey = &key
	}

	room := &models.Room{
		Name:        req.Name,
		Description: req.Description,
		AccessKey:   req.AccessKey,
		CreatedBy:   &user.ID,
	}
	if req.Icon != "" {
		room.Icon = req.Icon
	}

	if err := s.roomRepo.CreateWithCreator(c.Context(), room, user); err != nil {
		return s.respondError(c, err)
	}

	cache.Invalidate(c.Context(), roomDirectoryCacheKey)

	return c.Status(fiber.StatusCreated).JSON(room)
}

// JoinRoom adds the authenticated user to a room. Private rooms require the
// matching access key; joining a room twice is a no-op.
func (s *Server) JoinRoom(c *fiber.Ctx) error {
	roomID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	user, err := s.currentUser(c)
	if err != nil {
		return s.respondError(c, err)
	}

	room, err := s.roomRepo.GetByID(c.Context(), roomID)
	if err != nil {
		return s.respondError(c, err)
	}

	if room.AccessKey != nil {
		var req JoinRoomRequest
		_ = c.BodyParser(&req) // A missing body simply means no key was supplied.
		if req.AccessKey != *room.AccessKey {
			return s.respondError(c, models.NewForbiddenError("Invalid access key"))
		}
	}

	joined, err := s.roomRepo.Join(c.Context(), room, user)
	if err != nil {
		return s.respondError(c, err)
	}

	msg := "Joined room"
	if !joined {
		msg = "Already a member"
	}
	return c.JSON(fiber.Map{
		"message": msg,
		"room":    room,
	})
}

// QuitRoom removes the authenticated user from a room
func (s *Server) QuitRoom(c *fiber.Ctx) error {
	roomID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	user, err := s.currentUser(c)
	if err != nil {
		return s.respondError(c, err)
	}

	room, err := s.roomRepo.GetByID(c.Context(), roomID)
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.roomRepo.Quit(c.Context(), room, user); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Left room"})
}

// UpdateRoom applies a partial update. Only the room's creator (or an admin)
// may edit it.
func (s *Server) UpdateRoom(c *fiber.Ctx) error {
	roomID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	user, err := s.currentUser(c)
	if err != nil {
		return s.respondError(c, err)
	}

	room, err := s.roomRepo.GetByID(c.Context(), roomID)
	if err != nil {
		return s.respondError(c, err)
	}

	if !s.canManageRoom(room, user) {
		return s.respondError(c, models.NewForbiddenError("Only the room creator can edit this room"))
	}

	var req UpdateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validation.ValidateRoomName(name); err != nil {
			return s.respondError(c, models.NewValidationError(err.Error()))
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.AccessKey != nil {
		// A blank string clears the key and makes the room public again.
		if key := strings.TrimSpace(*req.AccessKey); key == "" {
			updates["access_key"] = nil
		} else {
			updates["access_key"] = key
		}
	}
	if len(updates) == 0 {
		return s.respondError(c, models.NewValidationError("No fields to update"))
	}

	updated, err := s.roomRepo.Update(c.Context(), roomID, updates)
	if err != nil {
		return s.respondError(c, err)
	}

	cache.Invalidate(c.Context(), roomDirectoryCacheKey)

	return c.JSON(updated)
}

// DeleteRoom removes a room and everything in it. Creator or admin only.
func (s *Server) DeleteRoom(c *fiber.Ctx) error {
	roomID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	user, err := s.currentUser(c)
	if err != nil {
		return s.respondError(c, err)
	}

	room, err := s.roomRepo.GetByID(c.Context(), roomID)
	if err != nil {
		return s.respondError(c, err)
	}

	if !s.canManageRoom(room, user) {
		return s.respondError(c, models.NewForbiddenError("Only the room creator can delete this room"))
	}

	if err := s.roomRepo.Delete(c.Context(), roomID); err != nil {
		return s.respondError(c, err)
	}

	cache.Invalidate(c.Context(), roomDirectoryCacheKey)

	return c.JSON(fiber.Map{"message": "Room deleted"})
}

func (s *Server) canManageRoom(room *models.Room, user *models.User) bool {
	if user.IsAdmin() {
		return true
	}
	return room.CreatedBy != nil && *room.CreatedBy == user.ID
}
