package services

import (
	"context"
	"errors"

	"linknest/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEntityNotFound   = errors.New("entity not found")
	ErrInvalidDirection = errors.New("invalid vote direction")
	ErrInvalidEntity    = errors.New("invalid entity type")
	ErrRateLimited      = errors.New("rate limit exceeded")
)

// VoteService 维护投票台账并同步重算实体的 Score 缓存
type VoteService struct {
	db      *gorm.DB
	limiter *RateLimiter
	log     *zap.SugaredLogger
}

func NewVoteService(db *gorm.DB, limiter *RateLimiter, log *zap.SugaredLogger) *VoteService {
	return &VoteService{db: db, limiter: limiter, log: log}
}

// CastVote 投票入口。同一用户对同一实体重复投票时覆盖方向（upsert），
// 不会产生第二行台账，也不会通过两行相抵归零。
// 成功后返回实体重算出的净分。
func (s *VoteService) CastVote(ctx context.Context, userID, entityType, entityID, direction string) (int, error) {
	if direction != models.DirectionUp && direction != models.DirectionDown {
		return 0, ErrInvalidDirection
	}
	if entityType != models.EntityPost && entityType != models.EntityComment {
		return 0, ErrInvalidEntity
	}

	// 实体必须存在，否决于任何写入之前
	var count int64
	if entityType == models.EntityPost {
		if err := s.db.Model(&models.Post{}).Where("id = ?", entityID).Count(&count).Error; err != nil {
			return 0, err
		}
	} else {
		if err := s.db.Model(&models.Comment{}).Where("id = ?", entityID).Count(&count).Error; err != nil {
			return 0, err
		}
	}
	if count == 0 {
		return 0, ErrEntityNotFound
	}

	// 投票额度乐观消耗：先计数再写入
	if !s.limiter.Take(ctx, "vote:"+userID, VoteLimit, VoteWindow) {
		return 0, ErrRateLimited
	}

	var score int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// upsert 台账行：冲突时只覆盖方向
		vote := models.Vote{
			UserID:     userID,
			EntityType: entityType,
			EntityID:   entityID,
			Direction:  direction,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "entity_type"}, {Name: "entity_id"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{"direction": direction}),
		}).Create(&vote).Error; err != nil {
			return err
		}

		// 回扫全量台账重算净分：count(up) - count(down)。
		// 并发投票下最后一次重算胜出，所有请求完成后收敛。
		if err := tx.Model(&models.Vote{}).
			Select("COALESCE(SUM(CASE WHEN direction = 'up' THEN 1 ELSE -1 END), 0)").
			Where("entity_type = ? AND entity_id = ?", entityType, entityID).
			Scan(&score).Error; err != nil {
			return err
		}

		// 同一事务内写回缓存字段，保证台账和分数要么都更新要么都不更新
		if entityType == models.EntityPost {
			return tx.Model(&models.Post{}).Where("id = ?", entityID).
				UpdateColumn("score", score).Error
		}
		return tx.Model(&models.Comment{}).Where("id = ?", entityID).
			UpdateColumn("score", score).Error
	})
	if err != nil {
		return 0, err
	}

	return score, nil
}
