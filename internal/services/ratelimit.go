package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"linknest/internal/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 各动作的固定窗口限额
const (
	SubmitLimit  = 1
	SubmitWindow = 24 * time.Hour

	CommentLimit  = 10
	CommentWindow = time.Hour

	VoteLimit  = 100
	VoteWindow = time.Hour

	MagicLinkLimit  = 3
	MagicLinkWindow = time.Hour
)

// CounterStore 是带 TTL 的计数存储。key 本身已编码窗口桶，
// TTL 只负责让过期桶自动消失，无需显式清理。
type CounterStore interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// RedisCounterStore 基于 Redis INCR + EXPIRE 的计数实现
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *RedisCounterStore) Get(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// LocalCounterStore 进程内计数实现，未配置 Redis 时使用
type LocalCounterStore struct {
	mu    sync.Mutex
	cache *utils.Cache
}

func NewLocalCounterStore(cache *utils.Cache) *LocalCounterStore {
	return &LocalCounterStore{cache: cache}
}

func (s *LocalCounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	if v := s.cache.Get(key); v != nil {
		n = v.(int64)
	}
	n++
	s.cache.Set(key, n, ttl)
	return n, nil
}

func (s *LocalCounterStore) Get(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v := s.cache.Get(key); v != nil {
		return v.(int64), nil
	}
	return 0, nil
}

// RateLimiter 固定窗口限流器。key 形如 "vote:<userID>"，
// 窗口桶号 = unix 秒 / 窗口秒数，拼进存储 key。
type RateLimiter struct {
	store CounterStore
	now   func() time.Time
	log   *zap.SugaredLogger
}

func NewRateLimiter(store CounterStore, log *zap.SugaredLogger) *RateLimiter {
	return &RateLimiter{store: store, now: time.Now, log: log}
}

// NewRateLimiterWithClock 注入时钟，供窗口边界测试使用
func NewRateLimiterWithClock(store CounterStore, log *zap.SugaredLogger, now func() time.Time) *RateLimiter {
	l := NewRateLimiter(store, log)
	l.now = now
	return l
}

func (l *RateLimiter) bucketKey(key string, window time.Duration) string {
	bucket := l.now().Unix() / int64(window.Seconds())
	return fmt.Sprintf("rl:%s:%d", key, bucket)
}

// Take 先计数后判断（乐观消耗）。投票、评论用这种方式：
// 后续写入失败也占一次额度，接受这个略偏严的边界情况。
func (l *RateLimiter) Take(ctx context.Context, key string, limit int, window time.Duration) bool {
	n, err := l.store.Incr(ctx, l.bucketKey(key, window), window)
	if err != nil {
		// 计数器故障时放行，限流不应成为单点
		l.log.Warnw("rate limiter incr failed", "key", key, "err", err)
		return true
	}
	return n <= int64(limit)
}

// Check 只读检查，不消耗额度。发帖、魔法链接先 Check，
// 动作确认落库/发出后再 Record，失败的尝试不占额度。
func (l *RateLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) bool {
	n, err := l.store.Get(ctx, l.bucketKey(key, window))
	if err != nil {
		l.log.Warnw("rate limiter get failed", "key", key, "err", err)
		return true
	}
	return n < int64(limit)
}

// Record 在被守护动作成功后记一次
func (l *RateLimiter) Record(ctx context.Context, key string, window time.Duration) {
	if _, err := l.store.Incr(ctx, l.bucketKey(key, window), window); err != nil {
		l.log.Warnw("rate limiter record failed", "key", key, "err", err)
	}
}
