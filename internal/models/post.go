package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	UserID  string `gorm:"size:36;not null;index" json:"user_id"`
	User    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title   string `gorm:"not null" json:"title"`
	URL     string `json:"url"` // Optional，纯文字帖可为空
	Content string `gorm:"type:text" json:"content"`

	// Score/CommentsCount 是投票表和评论表的派生缓存，只由聚合逻辑重算，
	// Hotness 只由定时任务重写，两次运行之间允许落后。
	Score         int       `gorm:"default:0" json:"score"`
	Hotness       float64   `gorm:"default:0;index" json:"hotness"`
	Clicks        int       `gorm:"default:0" json:"clicks"`
	CommentsCount int       `gorm:"default:0" json:"comments_count"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
