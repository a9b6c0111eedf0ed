package router

import (
	"linknest/internal/handlers"
	"linknest/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers 注册路由需要的全部处理器
type Handlers struct {
	Auth        *handlers.AuthHandler
	Story       *handlers.StoryHandler
	Vote        *handlers.VoteHandler
	User        *handlers.UserHandler
	Leaderboard *handlers.LeaderboardHandler
	SEO         *handlers.SEOHandler
}

func RegisterRoutes(r *gin.Engine, h *Handlers) {
	// 公共路由 (Public Routes)
	r.GET("/", h.Story.ListHot)                  // 首页 - 热门帖子
	r.GET("/new", h.Story.ListNew)               // 最新帖子
	r.GET("/p/:id", h.Story.Detail)              // 帖子详情（计一次点击）
	r.GET("/u/:id", h.User.Profile)              // 用户主页
	r.GET("/leaderboard", h.Leaderboard.List)    // 作者排行榜

	r.POST("/signup", h.Auth.Register) // 提交注册
	r.POST("/login", h.Auth.Login)     // 提交登录
	r.GET("/logout", h.Auth.Logout)    // 退出登录

	r.POST("/auth/magiclink", h.Auth.RequestMagicLink)      // 申请邮件登录链接
	r.GET("/auth/magiclink/verify", h.Auth.VerifyMagicLink) // 校验登录链接

	// SEO
	r.GET("/robots.txt", h.SEO.RobotsTxt)
	r.GET("/sitemap.xml", h.SEO.SitemapXML)
	r.GET("/feed.xml", h.SEO.FeedXML)

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/submit", h.Story.Create)                    // 提交帖子
		authorized.POST("/p/:id/comment", h.Story.CreateComment)      // 发表评论
		authorized.POST("/vote/:type/:id", h.Vote.Vote)               // 点赞/投票
		authorized.POST("/vote/:type/:id/down", h.Vote.Downvote)      // 踩/反对
	}
}
