package handlers

import (
	"fmt"
	"html"
	"net/http"
	"time"

	"linknest/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SEOHandler struct {
	db      *gorm.DB
	siteURL string
}

func NewSEOHandler(db *gorm.DB, siteURL string) *SEOHandler {
	return &SEOHandler{db: db, siteURL: siteURL}
}

// RobotsTxt 返回 robots.txt 内容
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /vote/
Disallow: /submit
Disallow: /login
Disallow: /signup

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

// SitemapXML 动态生成 sitemap.xml
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	now := time.Now().Format("2006-01-02")

	xml := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`
	// 固定页面
	for _, page := range []struct {
		path, freq, priority string
	}{
		{"/", "hourly", "1.0"},
		{"/new", "hourly", "0.9"},
		{"/leaderboard", "daily", "0.7"},
	} {
		xml += fmt.Sprintf(`  <url>
    <loc>%s%s</loc>
    <lastmod>%s</lastmod>
    <changefreq>%s</changefreq>
    <priority>%s</priority>
  </url>
`, h.siteURL, page.path, now, page.freq, page.priority)
	}

	// 最近 500 篇帖子
	var posts []models.Post
	h.db.Select("id", "updated_at").Order("created_at DESC").Limit(500).Find(&posts)
	for _, p := range posts {
		xml += fmt.Sprintf(`  <url>
    <loc>%s/p/%s</loc>
    <lastmod>%s</lastmod>
    <changefreq>daily</changefreq>
    <priority>0.8</priority>
  </url>
`, h.siteURL, p.ID, p.UpdatedAt.Format("2006-01-02"))
	}

	xml += `</urlset>`

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, xml)
}

// FeedXML 输出最新帖子的 RSS 2.0 订阅
func (h *SEOHandler) FeedXML(c *gin.Context) {
	var posts []models.Post
	h.db.Preload("User").Order("created_at DESC").Limit(30).Find(&posts)

	xml := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>LinkNest</title>
    <link>%s</link>
    <description>LinkNest 社区最新链接和讨论</description>
`, h.siteURL)

	for _, p := range posts {
		link := p.URL
		if link == "" {
			link = fmt.Sprintf("%s/p/%s", h.siteURL, p.ID)
		}
		xml += fmt.Sprintf(`    <item>
      <title>%s</title>
      <link>%s</link>
      <guid>%s/p/%s</guid>
      <author>%s</author>
      <pubDate>%s</pubDate>
    </item>
`, html.EscapeString(p.Title), html.EscapeString(link), h.siteURL, p.ID,
			html.EscapeString(p.User.Username), p.CreatedAt.Format(time.RFC1123Z))
	}

	xml += `  </channel>
</rss>`

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, xml)
}
