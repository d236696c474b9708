package server

import (
	"errors"
	"strconv"

	"cifconnect/internal/models"
	"cifconnect/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts and validates a numeric route parameter.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + param + " parameter")
	}
	return uint(id), nil
}

// parsePagination reads limit/offset query parameters, clamping the limit to
// the history page cap.
func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", repository.DefaultHistoryLimit)
	if limit <= 0 {
		limit = repository.DefaultHistoryLimit
	}
	if limit > repository.MaxHistoryLimit {
		limit = repository.MaxHistoryLimit
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// respondError maps an AppError code to its HTTP status and writes the
// standard error body. Non-AppError values fall through as 500s.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "VALIDATION_ERROR":
			status = fiber.StatusBadRequest
		case "UNAUTHORIZED":
			status = fiber.StatusUnauthorized
		case "FORBIDDEN":
			status = fiber.StatusForbidden
		case "NOT_FOUND":
			status = fiber.StatusNotFound
		case "CONFLICT":
			status = fiber.StatusConflict
		}
	}
	return models.RespondWithError(c, status, err)
}

// currentUser loads the authenticated user set by AuthRequired.
func (s *Server) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.userRepo.GetByID(c.Context(), userID)
}
