package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"doodleserver/game"
	"doodleserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoomService is the read side of the engine plus room deletion for admins.
type RoomService interface {
	GetRoom(code string) (models.RoomSnapshot, error)
	RoomStats(code string) (models.RoomStats, error)
	GlobalStats() models.GlobalStats
	PublicRooms() []models.PublicRoom
	DeleteRoom(code, reason string) error
}

// SnapshotCache reads room snapshots mirrored by any server instance.
type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

type Handler struct {
	rooms  RoomService
	cache  SnapshotCache
	logger *zap.Logger
}

// NewHandler は HTTP ハンドラーを作ります。cache は nil でも構いません。
func NewHandler(rooms RoomService, cache SnapshotCache, logger *zap.Logger) *Handler {
	return &Handler{rooms: rooms, cache: cache, logger: logger}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListRooms は待機中の公開ルーム一覧を返します。
func (h *Handler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.rooms.PublicRooms()})
}

// GetRoom returns the room snapshot. Rooms not hosted by this process are
// looked up in the shared cache.
func (h *Handler) GetRoom(c *gin.Context) {
	code := roomCode(c)
	snap, err := h.rooms.GetRoom(code)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"room": snap})
		return
	}
	if !errors.Is(err, game.ErrRoomNotFound) {
		h.logger.Error("Failed to get room", zap.String("room", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ルームの取得に失敗しました"})
		return
	}

	if h.cache != nil {
		raw, ok, err := h.cache.Get(c.Request.Context(), game.CacheKey(code))
		if err != nil {
			h.logger.Warn("Room cache read failed", zap.String("room", code), zap.Error(err))
		}
		if ok {
			var cached models.RoomSnapshot
			if err := json.Unmarshal(raw, &cached); err == nil {
				c.Header("X-Room-Source", "cache")
				c.JSON(http.StatusOK, gin.H{"room": cached})
				return
			}
			h.logger.Warn("Discarding malformed cached room", zap.String("room", code))
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "ルームが見つかりません", "code": game.ErrRoomNotFound.Code})
}

func roomCode(c *gin.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Param("code")))
}
