package handlers

import (
	"net/http"
	"strings"

	"linknest/internal/models"
	"linknest/internal/services"
	"linknest/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	mailService *services.MailService
	limiter     *services.RateLimiter
}

func NewAuthHandler(db *gorm.DB, mailService *services.MailService, limiter *services.RateLimiter) *AuthHandler {
	return &AuthHandler{db: db, mailService: mailService, limiter: limiter}
}

func (h *AuthHandler) Register(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	// Extract username from email
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		JSONError(c, http.StatusBadRequest, "invalid email")
		return
	}
	if len(password) < 6 {
		JSONError(c, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "register failed")
		return
	}

	user := models.User{
		Username: parts[0],
		Email:    email,
		Password: hash,
	}
	if err := h.db.Create(&user).Error; err != nil {
		JSONError(c, http.StatusConflict, "email already registered")
		return
	}

	h.mailService.SendWelcomeEmail(email)

	h.saveSession(c, user.ID)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	var user models.User
	if err := h.db.First(&user, "email = ?", email).Error; err != nil {
		JSONError(c, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !utils.CheckPassword(password, user.Password) {
		JSONError(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.saveSession(c, user.ID)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RequestMagicLink 申请邮件登录链接。同一邮箱限 3 次/小时，
// 邮件确认发出后才计额度。
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	if email == "" || !strings.Contains(email, "@") {
		JSONError(c, http.StatusBadRequest, "invalid email")
		return
	}

	ctx := c.Request.Context()
	limitKey := "magiclink:" + email
	if !h.limiter.Check(ctx, limitKey, services.MagicLinkLimit, services.MagicLinkWindow) {
		JSONError(c, http.StatusTooManyRequests, "too many login links requested, try later")
		return
	}

	var user models.User
	if err := h.db.First(&user, "email = ?", email).Error; err != nil {
		// 不泄露邮箱是否注册过，响应与成功时一致
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	code := utils.GenerateRandomCode(12)
	if err := h.db.Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumn("login_code", code).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "request failed")
		return
	}

	if err := h.mailService.SendLoginLink(email, code); err != nil {
		JSONError(c, http.StatusInternalServerError, "send mail failed")
		return
	}
	h.limiter.Record(ctx, limitKey, services.MagicLinkWindow)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// VerifyMagicLink 校验登录码并建立会话，登录码一次性使用
func (h *AuthHandler) VerifyMagicLink(c *gin.Context) {
	email := c.Query("email")
	code := c.Query("code")

	var user models.User
	if err := h.db.First(&user, "email = ?", email).Error; err != nil {
		JSONError(c, http.StatusUnauthorized, "invalid login link")
		return
	}
	if user.LoginCode == "" || user.LoginCode != code {
		JSONError(c, http.StatusUnauthorized, "invalid login link")
		return
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumn("login_code", "").Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "login failed")
		return
	}

	h.saveSession(c, user.ID)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) saveSession(c *gin.Context, userID string) {
	session := sessions.Default(c)
	session.Set("user_id", userID)
	session.Save()
}
