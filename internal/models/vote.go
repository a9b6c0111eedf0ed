package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 可投票实体类型与投票方向
const (
	EntityPost    = "post"
	EntityComment = "comment"

	DirectionUp   = "up"
	DirectionDown = "down"
)

// Vote 是投票台账：每个 (user, entity) 只有一行，改投覆盖方向，不删除。
// 实体的 Score 缓存永远从这张表重算出来。
type Vote struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_votes_user_entity" json:"user_id"`
	EntityType string    `gorm:"size:10;not null;uniqueIndex:idx_votes_user_entity" json:"entity_type"`
	EntityID   string    `gorm:"size:36;not null;uniqueIndex:idx_votes_user_entity" json:"entity_id"`
	Direction  string    `gorm:"size:5;not null" json:"direction"` // up / down
	CreatedAt  time.Time `json:"created_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
