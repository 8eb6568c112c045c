package handler

import (
	"net/http"
	"strconv"

	"github.com/Junheng-Zheng/Junbot/internal/subscriber"
	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	log *subscriber.ActivityLog
}

func NewActivityHandler(log *subscriber.ActivityLog) *ActivityHandler {
	return &ActivityHandler{log: log}
}

// List 最近的任务与对话活动，?limit= 默认 20
func (h *ActivityHandler) List(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries := h.log.Recent(limit)
	c.JSON(http.StatusOK, gin.H{"data": entries, "total": len(entries)})
}
