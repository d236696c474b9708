package server

import (
	"fmt"
	"net/http"
	"testing"

	"cifconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleReaction(t *testing.T) {
	srv, app := newTestServer(t)
	author := registerUser(t, app, "ada@example.com", "ada_anon")
	reactor := registerUser(t, app, "ben@example.com", "ben_anon")

	room := createRoom(t, app, author.Token, "Reactive", nil)
	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/rooms/%d/join", room.ID), reactor.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg := sendMessage(t, app, author.Token, room.ID, "react to this")
	toggleURL := fmt.Sprintf("/api/messages/%d/reactions", msg.ID)

	t.Run("first toggle adds the reaction", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, toggleURL, reactor.Token, map[string]string{"emoji": "🔥"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var reaction models.Reaction
		decodeBody(t, resp, &reaction)
		assert.Equal(t, "🔥", reaction.Emoji)
		assert.Equal(t, reactor.User.ID, reaction.UserID)
	})

	t.Run("second toggle removes it even with a different emoji", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, toggleURL, reactor.Token, map[string]string{"emoji": "👍"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var count int64
		require.NoError(t, srv.db.Model(&models.Reaction{}).
			Where("message_id = ? AND user_id = ?", msg.ID, reactor.User.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("third toggle adds it again", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, toggleURL, reactor.Token, map[string]string{"emoji": "👍"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("two users react independently", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, toggleURL, author.Token, map[string]string{"emoji": "❤️"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var count int64
		require.NoError(t, srv.db.Model(&models.Reaction{}).
			Where("message_id = ?", msg.ID).Count(&count).Error)
		assert.EqualValues(t, 2, count)
	})

	t.Run("blank emoji is rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, toggleURL, reactor.Token, map[string]string{"emoji": "  "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		outsider := registerUser(t, app, "cleo@example.com", "cleo_anon")
		resp := doJSON(t, app, http.MethodPost, toggleURL, outsider.Token, map[string]string{"emoji": "🔥"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("system messages cannot be reacted to", func(t *testing.T) {
		var joinMsg models.Message
		require.NoError(t, srv.db.Where("room_id = ? AND message_type = ?", room.ID, models.MessageTypeJoin).
			First(&joinMsg).Error)

		resp := doJSON(t, app, http.MethodPost,
			fmt.Sprintf("/api/messages/%d/reactions", joinMsg.ID), author.Token, map[string]string{"emoji": "🔥"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unknown message is not found", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/messages/99999/reactions", reactor.Token,
			map[string]string{"emoji": "🔥"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRemoveReaction(t *testing.T) {
	_, app := newTestServer(t)
	author := registerUser(t, app, "dan@example.com", "dan_anon")
	other := registerUser(t, app, "eli@example.com", "eli_anon")

	room := createRoom(t, app, author.Token, "Removable", nil)
	msg := sendMessage(t, app, author.Token, room.ID, "target")

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/messages/%d/reactions", msg.ID), author.Token,
		map[string]string{"emoji": "💀"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reaction models.Reaction
	decodeBody(t, resp, &reaction)

	t.Run("someone else's reaction is forbidden", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/reactions/%d", reaction.ID), other.Token, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("owner removes their reaction", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/reactions/%d", reaction.ID), author.Token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("removing it twice is not found", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/reactions/%d", reaction.ID), author.Token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
