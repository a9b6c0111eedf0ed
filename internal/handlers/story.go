package handlers

import (
	"net/http"
	"strings"

	"linknest/internal/middleware"
	"linknest/internal/models"
	"linknest/internal/services"
	"linknest/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const storiesPerPage = 30

type StoryHandler struct {
	db      *gorm.DB
	limiter *services.RateLimiter
	log     *zap.SugaredLogger
}

func NewStoryHandler(db *gorm.DB, limiter *services.RateLimiter, log *zap.SugaredLogger) *StoryHandler {
	return &StoryHandler{db: db, limiter: limiter, log: log}
}

// ListHot 热门列表，按定时任务写入的 hotness 排序。
// hotness 允许比实时投票落后一个重算周期。
func (h *StoryHandler) ListHot(c *gin.Context) {
	h.list(c, "hotness DESC, created_at DESC")
}

// ListNew 最新列表。hotness=0 的新帖照常出现在这里
func (h *StoryHandler) ListNew(c *gin.Context) {
	h.list(c, "created_at DESC")
}

func (h *StoryHandler) list(c *gin.Context, order string) {
	page, limit, offset := pageParams(c, storiesPerPage)

	var total int64
	h.db.Model(&models.Post{}).Count(&total)

	var posts []models.Post
	if err := h.db.Preload("User").
		Order(order).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "list posts failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"page":  page,
		"total": total,
	})
}

// Detail 帖子详情，附带评论。每次浏览给帖子点击量 +1，
// 点击量会进入作者声望的聚合。
func (h *StoryHandler) Detail(c *gin.Context) {
	id := c.Param("id")

	var post models.Post
	if err := h.db.Preload("User").First(&post, "id = ?", id).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}

	// 点击计数，尽力而为
	if err := h.db.Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).Error; err != nil {
		h.log.Warnw("increment clicks failed", "post_id", id, "err", err)
	}

	var comments []models.Comment
	h.db.Preload("User").Where("post_id = ?", id).
		Order("score DESC, created_at ASC").
		Find(&comments)

	c.JSON(http.StatusOK, gin.H{
		"post":         post,
		"content_html": utils.RenderMarkdown(post.Content),
		"comments":     comments,
	})
}

// Create 提交帖子。限额 1 篇/24 小时，帖子确认落库后才计额度，
// 失败的尝试不受罚。
func (h *StoryHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		JSONError(c, http.StatusUnauthorized, "login required")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	url := strings.TrimSpace(c.PostForm("url"))
	content := strings.TrimSpace(c.PostForm("content"))

	if title == "" {
		JSONError(c, http.StatusBadRequest, "title is required")
		return
	}
	if url == "" && content == "" {
		JSONError(c, http.StatusBadRequest, "either url or content is required")
		return
	}

	ctx := c.Request.Context()
	limitKey := "submit:" + user.ID
	if !h.limiter.Check(ctx, limitKey, services.SubmitLimit, services.SubmitWindow) {
		JSONError(c, http.StatusTooManyRequests, "submit limit reached, try later")
		return
	}

	post := models.Post{
		UserID:  user.ID,
		Title:   title,
		URL:     url,
		Content: content,
	}
	if err := h.db.Create(&post).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "create post failed")
		return
	}
	h.limiter.Record(ctx, limitKey, services.SubmitWindow)

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// CreateComment 发表评论。限额 10 条/小时，乐观消耗。
func (h *StoryHandler) CreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		JSONError(c, http.StatusUnauthorized, "login required")
		return
	}
	postID := c.Param("id")

	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		JSONError(c, http.StatusBadRequest, "content is required")
		return
	}

	var post models.Post
	if err := h.db.First(&post, "id = ?", postID).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}

	var parentID *string
	if pid := c.PostForm("parent_id"); pid != "" {
		var parent models.Comment
		if err := h.db.First(&parent, "id = ? AND post_id = ?", pid, postID).Error; err != nil {
			JSONError(c, http.StatusNotFound, "parent comment not found")
			return
		}
		parentID = &parent.ID
	}

	if !h.limiter.Take(c.Request.Context(), "comment:"+user.ID, services.CommentLimit, services.CommentWindow) {
		JSONError(c, http.StatusTooManyRequests, "comment limit reached, try later")
		return
	}

	comment := models.Comment{
		PostID:   postID,
		UserID:   user.ID,
		ParentID: parentID,
		Content:  content,
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		// 评论数是评论表的派生缓存，和分数一样从源表重算
		var count int64
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", postID).
			Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comments_count", count).Error
	})
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "create comment failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}
