package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cifconnect/internal/config"
	"cifconnect/internal/database"
	"cifconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServer builds a server over a fresh in-memory SQLite database and
// returns it together with a routed Fiber app. No Redis is wired, so rate
// limits fail open.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.EnsureDefaultRoom(db, "General"))

	cfg := &config.Config{
		JWTSecret:   "test-secret-not-for-production",
		DefaultRoom: "General",
		Env:         "test",
	}

	srv := NewServerWithDB(cfg, db, nil)
	app := srv.NewApp()
	srv.SetupRoutes(app)
	return srv, app
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeBody unmarshals the response body into dest.
func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, dest), "body: %s", string(b))
}

// registerUser creates an account through the API and returns the auth
// response.
func registerUser(t *testing.T, app *fiber.App, email, pseudo string) AuthResponse {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"pseudo":   pseudo,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var auth AuthResponse
	decodeBody(t, resp, &auth)
	require.NotEmpty(t, auth.Token)
	require.NotNil(t, auth.User)
	return auth
}

// promoteToAdmin flips a user's role directly in the database.
func promoteToAdmin(t *testing.T, srv *Server, userID uint) {
	t.Helper()
	require.NoError(t, srv.db.Model(&models.User{}).Where("id = ?", userID).
		Update("role", models.RoleAdmin).Error)
}

// createRoom creates a room through the API and returns it.
func createRoom(t *testing.T, app *fiber.App, token, name string, accessKey *string) models.Room {
	t.Helper()

	body := map[string]any{"name": name, "description": "test room"}
	if accessKey != nil {
		body["access_key"] = *accessKey
	}
	resp := doJSON(t, app, http.MethodPost, "/api/rooms/", token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var room models.Room
	decodeBody(t, resp, &room)
	return room
}

// sendMessage posts a chat message through the API and returns it.
func sendMessage(t *testing.T, app *fiber.App, token string, roomID uint, content string) models.Message {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/rooms/%d/messages", roomID), token,
		map[string]any{"content": content})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var msg models.Message
	decodeBody(t, resp, &msg)
	return msg
}
