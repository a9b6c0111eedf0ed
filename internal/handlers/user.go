package handlers

import (
	"net/http"

	"linknest/internal/models"
	"linknest/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db          *gorm.DB
	leaderboard *services.LeaderboardService
}

func NewUserHandler(db *gorm.DB, leaderboard *services.LeaderboardService) *UserHandler {
	return &UserHandler{db: db, leaderboard: leaderboard}
}

// Profile 用户主页：基本信息、最近帖子和声望值（总榜 + 周榜口径）
func (h *UserHandler) Profile(c *gin.Context) {
	id := c.Param("id")

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		JSONError(c, http.StatusNotFound, "user not found")
		return
	}

	var posts []models.Post
	h.db.Where("user_id = ?", id).
		Order("created_at DESC").
		Limit(20).
		Find(&posts)

	totalScore, err := h.leaderboard.AuthorScore(id, services.PeriodTotal)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "compute score failed")
		return
	}
	weeklyScore, err := h.leaderboard.AuthorScore(id, services.PeriodWeekly)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "compute score failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"posts":        posts,
		"total_score":  totalScore,
		"weekly_score": weeklyScore,
	})
}
