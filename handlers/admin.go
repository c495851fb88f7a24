package handlers

import (
	"errors"
	"net/http"

	"doodleserver/game"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) GlobalStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.rooms.GlobalStats())
}

func (h *Handler) RoomStats(c *gin.Context) {
	stats, err := h.rooms.RoomStats(roomCode(c))
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DeleteRoom は管理者がルームを強制的に閉じるためのハンドラーです。
func (h *Handler) DeleteRoom(c *gin.Context) {
	code := roomCode(c)
	if err := h.rooms.DeleteRoom(code, "admin"); err != nil {
		h.notFoundOrError(c, err)
		return
	}
	h.logger.Info("Room deleted by admin", zap.String("room", code), zap.String("ip", c.ClientIP()))
	c.Status(http.StatusNoContent)
}

func (h *Handler) notFoundOrError(c *gin.Context, err error) {
	if errors.Is(err, game.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ルームが見つかりません", "code": game.ErrRoomNotFound.Code})
		return
	}
	h.logger.Error("Admin request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "内部エラーが発生しました"})
}

// Register はルーティングを登録します。admin は管理APIに掛けるミドルウェアです。
func (h *Handler) Register(r gin.IRouter, admin ...gin.HandlerFunc) {
	r.GET("/health", h.Health)
	r.GET("/rooms", h.ListRooms)
	r.GET("/rooms/:code", h.GetRoom)

	group := r.Group("/admin", admin...)
	group.GET("/stats", h.GlobalStats)
	group.GET("/rooms/:code/stats", h.RoomStats)
	group.DELETE("/rooms/:code", h.DeleteRoom)
}
