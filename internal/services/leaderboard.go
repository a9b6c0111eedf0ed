package services

import (
	"fmt"
	"time"

	"linknest/internal/models"
	"linknest/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	PeriodTotal  = "total"
	PeriodWeekly = "weekly"

	leaderboardCacheTTL = 5 * time.Minute
)

// LeaderboardEntry 排行榜中的一行
type LeaderboardEntry struct {
	UserID     string  `json:"user_id"`
	Username   string  `json:"username"`
	Avatar     string  `json:"avatar"`
	TotalScore float64 `json:"total_score"`
}

// 作者声望归属于内容创建的时代：weekly 过滤的是帖子/评论自身的
// created_at，而不是投票发生的时间。平分时按 user_id 升序，
// 保证翻页顺序稳定。
const leaderboardSQL = `
SELECT lb.user_id, lb.username, lb.avatar, lb.total_score FROM (
	SELECT u.id AS user_id, u.username, u.avatar,
		COALESCE(pv.cnt, 0) + 0.5 * COALESCE(cv.cnt, 0) + COALESCE(pc.clicks, 0) AS total_score
	FROM users u
	LEFT JOIN (
		SELECT p.user_id, COUNT(*) AS cnt
		FROM votes v
		JOIN posts p ON v.entity_type = 'post' AND v.entity_id = p.id
		WHERE v.direction = 'up' AND p.created_at >= ?
		GROUP BY p.user_id
	) pv ON pv.user_id = u.id
	LEFT JOIN (
		SELECT c.user_id, COUNT(*) AS cnt
		FROM votes v
		JOIN comments c ON v.entity_type = 'comment' AND v.entity_id = c.id
		WHERE v.direction = 'up' AND c.created_at >= ?
		GROUP BY c.user_id
	) cv ON cv.user_id = u.id
	LEFT JOIN (
		SELECT user_id, SUM(clicks) AS clicks
		FROM posts
		WHERE created_at >= ?
		GROUP BY user_id
	) pc ON pc.user_id = u.id
) lb
WHERE lb.total_score > 0
ORDER BY lb.total_score DESC, lb.user_id ASC
LIMIT ? OFFSET ?`

// LeaderboardService 按需聚合作者声望：
// total_score = 帖子获赞 + 0.5*评论获赞 + 帖子点击总量
type LeaderboardService struct {
	db    *gorm.DB
	cache *utils.Cache
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewLeaderboardService(db *gorm.DB, cache *utils.Cache, log *zap.SugaredLogger) *LeaderboardService {
	return &LeaderboardService{db: db, cache: cache, log: log, now: time.Now}
}

// NewLeaderboardServiceWithClock 注入时钟，供周榜窗口测试使用
func NewLeaderboardServiceWithClock(db *gorm.DB, cache *utils.Cache, log *zap.SugaredLogger, now func() time.Time) *LeaderboardService {
	s := NewLeaderboardService(db, cache, log)
	s.now = now
	return s
}

// since 把榜单周期换算成内容创建时间的下界。
// total 用 Unix 零点当作"不过滤"，所有正常数据都晚于它。
func (s *LeaderboardService) since(period string) time.Time {
	if period == PeriodWeekly {
		return s.now().Add(-7 * 24 * time.Hour)
	}
	return time.Unix(0, 0)
}

// Compute 计算排行榜。只返回 total_score > 0 的作者，
// 没有合格活动的作者整行缺席，调用方不能假设作者名单完整。
func (s *LeaderboardService) Compute(period string, limit, offset int) ([]LeaderboardEntry, error) {
	if period != PeriodWeekly {
		period = PeriodTotal
	}

	cacheKey := fmt.Sprintf("leaderboard:%s:%d:%d", period, limit, offset)
	if cached := s.cache.Get(cacheKey); cached != nil {
		if entries, ok := cached.([]LeaderboardEntry); ok {
			return entries, nil
		}
	}

	since := s.since(period)
	entries := []LeaderboardEntry{}
	if err := s.db.Raw(leaderboardSQL, since, since, since, limit, offset).
		Scan(&entries).Error; err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey, entries, leaderboardCacheTTL)
	return entries, nil
}

// AuthorScore 计算单个作者的声望值，用于用户主页
func (s *LeaderboardService) AuthorScore(userID, period string) (float64, error) {
	since := s.since(period)

	var postUpvotes int64
	if err := s.db.Model(&models.Vote{}).
		Joins("JOIN posts p ON votes.entity_type = 'post' AND votes.entity_id = p.id").
		Where("p.user_id = ? AND votes.direction = 'up' AND p.created_at >= ?", userID, since).
		Count(&postUpvotes).Error; err != nil {
		return 0, err
	}

	var commentUpvotes int64
	if err := s.db.Model(&models.Vote{}).
		Joins("JOIN comments c ON votes.entity_type = 'comment' AND votes.entity_id = c.id").
		Where("c.user_id = ? AND votes.direction = 'up' AND c.created_at >= ?", userID, since).
		Count(&commentUpvotes).Error; err != nil {
		return 0, err
	}

	var clicks int64
	if err := s.db.Model(&models.Post{}).
		Select("COALESCE(SUM(clicks), 0)").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&clicks).Error; err != nil {
		return 0, err
	}

	return float64(postUpvotes) + 0.5*float64(commentUpvotes) + float64(clicks), nil
}
