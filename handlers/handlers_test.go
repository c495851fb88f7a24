package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"doodleserver/game"
	"doodleserver/middlewares"
	"doodleserver/models"
)

type mapCache map[string][]byte

func (m mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func setup(t *testing.T, cache SnapshotCache) (*gin.Engine, *game.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := game.NewEngine(zap.NewNop())
	t.Cleanup(engine.Close)

	r := gin.New()
	NewHandler(engine, cache, zap.NewNop()).Register(r, middlewares.AdminAuth("admin-token", zap.NewNop()))
	return r, engine
}

func do(r http.Handler, method, path string, admin bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if admin {
		req.Header.Set("Authorization", "Bearer admin-token")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	r, _ := setup(t, nil)
	w := do(r, http.MethodGet, "/health", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestListAndGetRooms(t *testing.T) {
	r, engine := setup(t, nil)
	public, err := engine.CreateRoom("p1", "Alice", models.RoomConfig{})
	require.NoError(t, err)
	_, err = engine.CreateRoom("p2", "Bob", models.RoomConfig{Private: true})
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/rooms", false)
	require.Equal(t, http.StatusOK, w.Code)
	rooms := decode(t, w)["rooms"].([]interface{})
	require.Len(t, rooms, 1)
	assert.Equal(t, public.ID, rooms[0].(map[string]interface{})["id"])

	w = do(r, http.MethodGet, "/rooms/"+public.ID, false)
	require.Equal(t, http.StatusOK, w.Code)
	room := decode(t, w)["room"].(map[string]interface{})
	assert.Equal(t, "p1", room["hostId"])
	assert.Empty(t, w.Header().Get("X-Room-Source"))
}

func TestGetRoomFallsBackToCache(t *testing.T) {
	snap, err := json.Marshal(models.RoomSnapshot{ID: "REMOTE", HostID: "px"})
	require.NoError(t, err)
	r, _ := setup(t, mapCache{game.CacheKey("REMOTE"): snap})

	w := do(r, http.MethodGet, "/rooms/remote", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cache", w.Header().Get("X-Room-Source"))
	assert.Equal(t, "px", decode(t, w)["room"].(map[string]interface{})["hostId"])

	w = do(r, http.MethodGet, "/rooms/NOPE00", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "room-not-found", decode(t, w)["code"])
}

func TestAdminRoutes(t *testing.T) {
	r, engine := setup(t, nil)
	snap, err := engine.CreateRoom("p1", "Alice", models.RoomConfig{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/admin/stats", false).Code)

	w := do(r, http.MethodGet, "/admin/stats", true)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)
	assert.Equal(t, float64(1), stats["totalRooms"])
	assert.Equal(t, float64(1), stats["roomsCreated"])

	w = do(r, http.MethodGet, "/admin/rooms/"+snap.ID+"/stats", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["players"])

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/admin/rooms/"+snap.ID, true).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/admin/rooms/"+snap.ID, true).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/admin/rooms/"+snap.ID+"/stats", true).Code)
}
