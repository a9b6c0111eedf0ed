package services

import (
	"testing"
	"time"

	"linknest/internal/utils"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestHotnessRecompute(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("rewrites hotness for posts in the recency window", func(t *testing.T) {
		gdb, mock := newTestDB(t)
		s := NewHotnessServiceWithClock(gdb, testLogger(), func() time.Time { return now })

		// 1 小时前的帖子：score=10, comments=5 → ≈2.117
		oneHourOld := now.Add(-time.Hour)
		// 3 天前的帖子
		threeDaysOld := now.Add(-72 * time.Hour)

		rows := sqlmock.NewRows([]string{"id", "created_at", "score", "comments_count"}).
			AddRow("p1", oneHourOld, 10, 5).
			AddRow("p2", threeDaysOld, 4, 0)
		mock.ExpectQuery(`SELECT .+ FROM "posts" WHERE created_at >=`).
			WithArgs(now.Add(-RecencyWindow)).
			WillReturnRows(rows)

		mock.ExpectExec(`UPDATE "posts" SET "hotness"`).
			WithArgs(utils.CalculateHotness(10, 5, 1), "p1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "posts" SET "hotness"`).
			WithArgs(utils.CalculateHotness(4, 0, 72), "p2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := s.Recompute()
		assert.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty window touches nothing", func(t *testing.T) {
		gdb, mock := newTestDB(t)
		s := NewHotnessServiceWithClock(gdb, testLogger(), func() time.Time { return now })

		mock.ExpectQuery(`SELECT .+ FROM "posts" WHERE created_at >=`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "score", "comments_count"}))

		n, err := s.Recompute()
		assert.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("single failed update does not abort the batch", func(t *testing.T) {
		gdb, mock := newTestDB(t)
		s := NewHotnessServiceWithClock(gdb, testLogger(), func() time.Time { return now })

		rows := sqlmock.NewRows([]string{"id", "created_at", "score", "comments_count"}).
			AddRow("p1", now.Add(-time.Hour), 1, 0).
			AddRow("p2", now.Add(-2*time.Hour), 2, 0)
		mock.ExpectQuery(`SELECT .+ FROM "posts" WHERE created_at >=`).
			WillReturnRows(rows)

		mock.ExpectExec(`UPDATE "posts" SET "hotness"`).
			WillReturnError(assert.AnError)
		mock.ExpectExec(`UPDATE "posts" SET "hotness"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := s.Recompute()
		assert.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
