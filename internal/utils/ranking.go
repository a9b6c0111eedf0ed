package utils

import (
	"math"
)

// HotnessConfig 热度公式常量
type HotnessConfig struct {
	CommentWeight float64 // 评论权重 (0.2)
	AgeOffset     float64 // 时间偏移，防止新帖分母过小 (2)
	Gravity       float64 // 时间重力 (1.5)
}

var DefaultHotness = HotnessConfig{
	CommentWeight: 0.2,
	AgeOffset:     2.0,
	Gravity:       1.5,
}

// CalculateHotness 计算帖子热度：
//
//	hotness = (score + w*comments) / (ageHours + c)^gravity
//
// 只依赖已缓存的 score/comments_count 和帖龄，是纯函数，不回扫投票表。
// score=0 且 comments=0 时结果为 0，排在热门底部但不影响"最新"。
func CalculateHotness(score, comments int, ageHours float64) float64 {
	if ageHours < 0 {
		ageHours = 0
	}

	numerator := float64(score) + DefaultHotness.CommentWeight*float64(comments)

	// 时间衰减 (分母)
	decay := math.Pow(ageHours+DefaultHotness.AgeOffset, DefaultHotness.Gravity)

	return numerator / decay
}
