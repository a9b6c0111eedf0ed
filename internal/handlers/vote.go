package handlers

import (
	"errors"
	"net/http"

	"linknest/internal/middleware"
	"linknest/internal/models"
	"linknest/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// Vote 处理点赞逻辑
func (h *VoteHandler) Vote(c *gin.Context) {
	h.cast(c, models.DirectionUp)
}

// Downvote 处理点踩逻辑
func (h *VoteHandler) Downvote(c *gin.Context) {
	h.cast(c, models.DirectionDown)
}

func (h *VoteHandler) cast(c *gin.Context, direction string) {
	user := middleware.CurrentUser(c)
	if user == nil {
		JSONError(c, http.StatusUnauthorized, "login required")
		return
	}

	itemType := c.Param("type") // "post" or "comment"
	itemID := c.Param("id")

	score, err := h.votes.CastVote(c.Request.Context(), user.ID, itemType, itemID, direction)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDirection), errors.Is(err, services.ErrInvalidEntity):
			JSONError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrEntityNotFound):
			JSONError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrRateLimited):
			JSONError(c, http.StatusTooManyRequests, err.Error())
		default:
			JSONError(c, http.StatusInternalServerError, "vote failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entity_type": itemType,
		"entity_id":   itemID,
		"direction":   direction,
		"score":       score,
	})
}
