package services

import (
	"time"

	"linknest/internal/models"
	"linknest/internal/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecencyWindow 只重算窗口内创建的帖子；更老的帖子保留最后一次的
// 热度值，不再回升（衰减已经让它们无关紧要）。
const RecencyWindow = 7 * 24 * time.Hour

// HotnessService 定时批量重写帖子的衰减热度值。
// 计算只用已缓存的 score/comments_count，不回扫投票表，
// 换来每帖 O(1) 的成本和一个有界的过期窗口。
type HotnessService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

func NewHotnessService(db *gorm.DB, log *zap.SugaredLogger) *HotnessService {
	return &HotnessService{db: db, log: log, now: time.Now}
}

// NewHotnessServiceWithClock 注入时钟，重算逻辑无需真实时间流逝即可测试
func NewHotnessServiceWithClock(db *gorm.DB, log *zap.SugaredLogger, now func() time.Time) *HotnessService {
	s := NewHotnessService(db, log)
	s.now = now
	return s
}

// Recompute 重算最近 7 天全部帖子的热度，返回处理的帖子数
func (s *HotnessService) Recompute() (int, error) {
	now := s.now()
	cutoff := now.Add(-RecencyWindow)

	var posts []models.Post
	if err := s.db.Select("id", "created_at", "score", "comments_count").
		Where("created_at >= ?", cutoff).
		Find(&posts).Error; err != nil {
		return 0, err
	}

	updated := 0
	for _, p := range posts {
		ageHours := now.Sub(p.CreatedAt).Hours()
		hotness := utils.CalculateHotness(p.Score, p.CommentsCount, ageHours)

		if err := s.db.Model(&models.Post{}).Where("id = ?", p.ID).
			UpdateColumn("hotness", hotness).Error; err != nil {
			s.log.Warnw("update hotness failed", "post_id", p.ID, "err", err)
			continue
		}
		updated++
	}

	return updated, nil
}

// StartSchedule 启动每小时一次的热度重算任务。
// 任务独立于请求路径运行，投票不触发全量重排。
func (s *HotnessService) StartSchedule() (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc("@hourly", func() {
		n, err := s.Recompute()
		if err != nil {
			s.log.Errorw("scheduled hotness recompute failed", "err", err)
			return
		}
		s.log.Infow("hotness recompute finished", "posts", n)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
