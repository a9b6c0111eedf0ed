package handlers

import (
	"net/http"

	"linknest/internal/services"

	"github.com/gin-gonic/gin"
)

const leaderboardPerPage = 30

type LeaderboardHandler struct {
	leaderboard *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboard *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// List 排行榜查询，period=total|weekly，按 total_score 降序、
// user_id 升序分页返回。
func (h *LeaderboardHandler) List(c *gin.Context) {
	period := c.DefaultQuery("period", services.PeriodTotal)
	page, limit, offset := pageParams(c, leaderboardPerPage)

	entries, err := h.leaderboard.Compute(period, limit, offset)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "compute leaderboard failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period":  period,
		"page":    page,
		"entries": entries,
	})
}
