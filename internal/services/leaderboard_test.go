package services

import (
	"testing"
	"time"

	"linknest/internal/utils"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func newLeaderboardService(t *testing.T, now time.Time) (*LeaderboardService, sqlmock.Sqlmock) {
	t.Helper()
	gdb, mock := newTestDB(t)
	cache, err := utils.NewCache(100)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	return NewLeaderboardServiceWithClock(gdb, cache, testLogger(), func() time.Time { return now }), mock
}

func TestLeaderboardCompute(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("weekly period windows on content creation time", func(t *testing.T) {
		s, mock := newLeaderboardService(t, now)
		since := now.Add(-7 * 24 * time.Hour)

		rows := sqlmock.NewRows([]string{"user_id", "username", "avatar", "total_score"}).
			AddRow("u2", "bob", "🌱", 12.5).
			AddRow("u1", "alice", "🌱", 3.0)
		// 三个子查询都按内容自身的 created_at 过滤
		mock.ExpectQuery(`SELECT lb.user_id`).
			WithArgs(since, since, since, 30, 0).
			WillReturnRows(rows)

		entries, err := s.Compute(PeriodWeekly, 30, 0)
		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, "u2", entries[0].UserID)
		assert.Equal(t, 12.5, entries[0].TotalScore)
		assert.Equal(t, "u1", entries[1].UserID)
		assert.NoError(t, mock.ExpectationsWereMet())

		// 排行榜永不返回 total_score <= 0 的作者
		for _, e := range entries {
			assert.Greater(t, e.TotalScore, 0.0)
		}
	})

	t.Run("total period uses unix epoch as lower bound", func(t *testing.T) {
		s, mock := newLeaderboardService(t, now)
		epoch := time.Unix(0, 0)

		mock.ExpectQuery(`SELECT lb.user_id`).
			WithArgs(epoch, epoch, epoch, 10, 20).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "avatar", "total_score"}))

		entries, err := s.Compute(PeriodTotal, 10, 20)
		assert.NoError(t, err)
		assert.Empty(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown period falls back to total", func(t *testing.T) {
		s, mock := newLeaderboardService(t, now)
		epoch := time.Unix(0, 0)

		mock.ExpectQuery(`SELECT lb.user_id`).
			WithArgs(epoch, epoch, epoch, 30, 0).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "avatar", "total_score"}))

		_, err := s.Compute("fortnightly", 30, 0)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second call within TTL served from cache", func(t *testing.T) {
		s, mock := newLeaderboardService(t, now)
		since := now.Add(-7 * 24 * time.Hour)

		mock.ExpectQuery(`SELECT lb.user_id`).
			WithArgs(since, since, since, 30, 0).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "avatar", "total_score"}).
				AddRow("u1", "alice", "🌱", 5.0))

		first, err := s.Compute(PeriodWeekly, 30, 0)
		assert.NoError(t, err)

		// 没有排任何新的查询期望：再触库 mock 会报错
		second, err := s.Compute(PeriodWeekly, 30, 0)
		assert.NoError(t, err)
		assert.Equal(t, first, second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuthorScore(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	s, mock := newLeaderboardService(t, now)

	// post_upvotes=4, comment_upvotes=6, clicks=10
	// total = 4 + 0.5*6 + 10 = 17
	mock.ExpectQuery(`SELECT count`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`SELECT count`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(`SELECT COALESCE`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(10))

	score, err := s.AuthorScore("u1", PeriodTotal)
	assert.NoError(t, err)
	assert.Equal(t, 17.0, score)
	assert.NoError(t, mock.ExpectationsWereMet())
}
