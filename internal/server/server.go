// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"cifconnect/internal/cache"
	"cifconnect/internal/config"
	"cifconnect/internal/database"
	"cifconnect/internal/middleware"
	"cifconnect/internal/models"
	"cifconnect/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "cifconnect-api"
	tokenAudience = "cifconnect-client"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config       *config.Config
	db           *gorm.DB
	redis        *redis.Client
	userRepo     repository.UserRepository
	roomRepo     repository.RoomRepository
	messageRepo  repository.MessageRepository
	reactionRepo repository.ReactionRepository
	reportRepo   repository.ReportRepository
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.EnsureDefaultRoom(db, cfg.DefaultRoom); err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDB(cfg, db, cache.GetClient()), nil
}

// NewServerWithDB wires a server around an existing database handle.
// Tests use it with an in-memory SQLite database.
func NewServerWithDB(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	return &Server{
		config:       cfg,
		db:           db,
		redis:        redisClient,
		userRepo:     repository.NewUserRepository(db),
		roomRepo:     repository.NewRoomRepository(db),
		messageRepo:  repository.NewMessageRepository(db),
		reactionRepo: repository.NewReactionRepository(db),
		reportRepo:   repository.NewReportRepository(db),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Request ID for tracing
	app.Use(requestid.New())

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health check
	api.Get("/", s.HealthCheck)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me/pseudo", middleware.RateLimit(s.redis, 3, time.Hour, "rename"), s.UpdateMyPseudo)

	// Room routes
	rooms := protected.Group("/rooms")
	rooms.Get("/", s.GetRooms)
	rooms.Get("/mine", s.GetMyRooms)
	rooms.Post("/", middleware.RateLimit(s.redis, 2, 10*time.Minute, "create_room"), s.CreateRoom)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	rooms.Post("/:id/join", s.JoinRoom)
	rooms.Post("/:id/quit", s.QuitRoom)
	rooms.Get("/:id/messages", s.GetMessages)
	rooms.Post("/:id/messages", middleware.RateLimit(s.redis, 15, time.Minute, "send_message"), s.SendMessage)
	// Generic /:id routes (update, delete)
	rooms.Put("/:id", s.UpdateRoom)
	rooms.Delete("/:id", s.DeleteRoom)

	// Message routes
	messages := protected.Group("/messages")
	messages.Post("/:id/reactions", s.ToggleReaction)
	messages.Post("/:id/report", middleware.RateLimit(s.redis, 5, 10*time.Minute, "report"), s.ReportMessage)
	messages.Delete("/:id", s.DeleteMessage)

	// Reaction routes
	reactions := protected.Group("/reactions")
	reactions.Delete("/:id", s.RemoveReaction)

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/reports", s.GetAdminReports)
	admin.Post("/reports/:id/resolve", s.ResolveAdminReport)
	admin.Get("/users", s.GetAdminUsers)
	admin.Post("/users/:id/unban", s.UnbanUser)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "CIF Connect",
		"status":  "healthy",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Extract token from "Bearer <token>"
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Store user ID in context
		c.Locals("userID", uint(userID))

		return c.Next()
	}
}

// AdminRequired gates a route group to users holding the admin role.
// It must run after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)
		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return s.respondError(c, err)
		}
		if !user.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin privileges required"))
		}
		return c.Next()
	}
}

// generateToken creates a JWT token for the given user.
// The pseudo and role travel as claims so API consumers can render the
// bearer's identity without an extra round-trip.
func (s *Server) generateToken(user *models.User) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    strconv.FormatUint(uint64(user.ID), 10), // Subject (user ID as string)
		"iss":    tokenIssuer,
		"aud":    tokenAudience,
		"exp":    now.Add(time.Hour * 24 * 7).Unix(), // Expiration (7 days)
		"iat":    now.Unix(),
		"nbf":    now.Unix(),
		"jti":    s.generateJTI(),
		"pseudo": user.Pseudo,
		"role":   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// NewApp builds the Fiber application with the server's error handler.
func (s *Server) NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName: "CIF Connect API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
}

// Shutdown gracefully shuts down the server's resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	cache.Close()

	log.Println("Server shutdown complete")
	return nil
}
