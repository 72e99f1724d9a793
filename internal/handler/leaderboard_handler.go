package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"taskventure.app/backend/internal/service"
	"taskventure.app/backend/pkg/response"
)

type LeaderboardHandler struct {
	service service.LeaderboardService
}

func NewLeaderboardHandler(service service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) TopUsers(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}

	entries, err := h.service.Top(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
