package server

import (
	"strings"
	"time"

	"cifconnect/internal/models"
	"cifconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Pseudo   string `json:"pseudo"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token together with the user's profile.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles user registration
func (s *Server) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Pseudo = strings.TrimSpace(req.Pseudo)

	if err := validation.ValidateEmail(req.Email); err != nil {
		return s.respondError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return s.respondError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePseudo(req.Pseudo); err != nil {
		return s.respondError(c, models.NewValidationError(err.Error()))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Email:    req.Email,
		Password: string(hashed),
		Pseudo:   req.Pseudo,
		Role:     models.RoleMember,
	}

	if err := s.userRepo.Register(c.Context(), user, s.config.DefaultRoom); err != nil {
		return s.respondError(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{Token: token, User: user})
}

// Login handles user authentication
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return s.respondError(c, models.NewValidationError("Email and password are required"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return s.respondError(c, err)
	}
	if user == nil {
		return s.respondError(c, models.NewNotFoundError("Account", req.Email))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return s.respondError(c, models.NewUnauthorizedError("Invalid credentials"))
	}

	if user.IsBanned {
		if user.BanActive(time.Now()) {
			msg := "Your account is banned"
			if user.BanReason != "" {
				msg += ": " + user.BanReason
			}
			return s.respondError(c, models.NewForbiddenError(msg))
		}
		// The ban has expired; lift it so the flag doesn't linger.
		if err := s.userRepo.ClearBan(c.Context(), user.ID); err != nil {
			return s.respondError(c, err)
		}
		user.IsBanned = false
		user.BanReason = ""
		user.BanExpiresAt = nil
	}

	token, err := s.generateToken(user)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	return c.JSON(AuthResponse{Token: token, User: user})
}
