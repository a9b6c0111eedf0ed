package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"linknest/internal/middleware"
	"linknest/internal/models"
	"linknest/internal/services"
	"linknest/internal/utils"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("cant create mock: %s", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("cant open gorm: %s", err)
	}
	return gdb, mock
}

// setUser 测试用中间件：跳过会话，直接把用户放进上下文
func setUser(u *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u != nil {
			c.Set(middleware.CheckUserKey, u)
		}
		c.Next()
	}
}

func newVoteRouter(t *testing.T, u *models.User) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, mock := newTestDB(t)
	cache, err := utils.NewCache(100)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	limiter := services.NewRateLimiter(services.NewLocalCounterStore(cache), zap.NewNop().Sugar())
	votes := services.NewVoteService(gdb, limiter, zap.NewNop().Sugar())
	h := NewVoteHandler(votes)

	r := gin.New()
	r.Use(setUser(u))
	r.POST("/vote/:type/:id", h.Vote)
	r.POST("/vote/:type/:id/down", h.Downvote)
	return r, mock
}

func TestVoteHandler(t *testing.T) {
	user := &models.User{ID: "u1", Username: "alice"}

	t.Run("upvote returns recomputed score", func(t *testing.T) {
		r, mock := newVoteRouter(t, user)

		mock.ExpectQuery(`SELECT count`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "votes"`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery(`SELECT COALESCE`).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(7))
		mock.ExpectExec(`UPDATE "posts" SET "score"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/vote/post/p1", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(7), body["score"])
		assert.Equal(t, "up", body["direction"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("downvote route sends down direction", func(t *testing.T) {
		r, mock := newVoteRouter(t, user)

		mock.ExpectQuery(`SELECT count`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "votes"`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery(`SELECT COALESCE`).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(-1))
		mock.ExpectExec(`UPDATE "comments" SET "score"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/vote/comment/c1/down", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(-1), body["score"])
		assert.Equal(t, "down", body["direction"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		r, mock := newVoteRouter(t, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/vote/post/p1", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown entity type gets 400", func(t *testing.T) {
		r, mock := newVoteRouter(t, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/vote/story/p1", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing entity gets 404", func(t *testing.T) {
		r, mock := newVoteRouter(t, user)

		mock.ExpectQuery(`SELECT count`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/vote/post/nope", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
