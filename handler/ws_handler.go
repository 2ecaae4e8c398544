package handler

import (
	"net/http"

	"github.com/yxlimo/paperhub/middleware"
	"github.com/yxlimo/paperhub/realtime"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Connect 建立 websocket 连接，按用户记入 hub
// GET /api/ws
func (h *WSHandler) Connect(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	h.hub.ServeWS(c.Writer, c.Request, userID)
}
