package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateHotness(t *testing.T) {
	t.Run("one hour old post", func(t *testing.T) {
		// score=10, comments=5, age=1h
		// (10 + 0.2*5) / (1+2)^1.5 = 11 / 5.196... ≈ 2.117
		got := CalculateHotness(10, 5, 1)
		assert.InDelta(t, 11.0/math.Pow(3, 1.5), got, 1e-9)
		assert.InDelta(t, 2.117, got, 0.001)
	})

	t.Run("zero score zero comments is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CalculateHotness(0, 0, 0))
		assert.Equal(t, 0.0, CalculateHotness(0, 0, 100))
	})

	t.Run("monotonic decay over age", func(t *testing.T) {
		// 固定 score/comments，热度随帖龄单调不增
		prev := math.Inf(1)
		for _, age := range []float64{0, 0.5, 1, 2, 6, 12, 24, 72, 168} {
			h := CalculateHotness(10, 5, age)
			assert.Less(t, h, prev, "age %v should decay", age)
			prev = h
		}
	})

	t.Run("comments weigh less than votes", func(t *testing.T) {
		byVotes := CalculateHotness(10, 0, 1)
		byComments := CalculateHotness(0, 10, 1)
		assert.Greater(t, byVotes, byComments)
	})

	t.Run("negative age clamped", func(t *testing.T) {
		assert.Equal(t, CalculateHotness(10, 0, 0), CalculateHotness(10, 0, -1))
	})
}
