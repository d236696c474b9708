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

func TestGetMyProfile(t *testing.T) {
	_, app := newTestServer(t)
	auth := registerUser(t, app, "dora@example.com", "dora_anon")

	resp := doJSON(t, app, http.MethodGet, "/api/users/me", auth.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	decodeBody(t, resp, &user)
	assert.Equal(t, auth.User.ID, user.ID)
	assert.Equal(t, "dora_anon", user.Pseudo)
}

func TestUpdateMyPseudo(t *testing.T) {
	_, app := newTestServer(t)
	auth := registerUser(t, app, "eve@example.com", "eve_anon")
	registerUser(t, app, "frank@example.com", "frank_anon")

	t.Run("renames and bumps the rename timestamp", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/users/me/pseudo", auth.Token,
			map[string]string{"pseudo": "eve_reborn"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var user models.User
		decodeBody(t, resp, &user)
		assert.Equal(t, "eve_reborn", user.Pseudo)
		assert.False(t, user.LastPseudoUpdate.Before(auth.User.LastPseudoUpdate))
	})

	t.Run("rejects renaming to the current pseudo", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/users/me/pseudo", auth.Token,
			map[string]string{"pseudo": "eve_reborn"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("rejects a pseudo owned by another user", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/users/me/pseudo", auth.Token,
			map[string]string{"pseudo": "frank_anon"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("rejects an invalid pseudo", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/users/me/pseudo", auth.Token,
			map[string]string{"pseudo": "ab"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminUsers(t *testing.T) {
	srv, app := newTestServer(t)
	admin := registerUser(t, app, "admin@example.com", "mod_team")
	promoteToAdmin(t, srv, admin.User.ID)
	member := registerUser(t, app, "grace@example.com", "grace_anon")

	t.Run("non-admin is forbidden", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/admin/users", member.Token, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("lists users with search", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/admin/users?search=grace", admin.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Users []models.User `json:"users"`
			Count int           `json:"count"`
		}
		decodeBody(t, resp, &body)
		require.Equal(t, 1, body.Count)
		assert.Equal(t, "grace_anon", body.Users[0].Pseudo)
	})

	t.Run("unban lifts a ban", func(t *testing.T) {
		require.NoError(t, srv.userRepo.Ban(context.Background(), member.User.ID, "test ban", nil))

		resp := doJSON(t, app, http.MethodPost,
			fmt.Sprintf("/api/admin/users/%d/unban", member.User.ID), admin.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		user, err := srv.userRepo.GetByID(context.Background(), member.User.ID)
		require.NoError(t, err)
		assert.False(t, user.IsBanned)
	})

	t.Run("unban of unknown user is not found", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/admin/users/99999/unban", admin.Token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
