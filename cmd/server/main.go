package main

import (
	"log"

	"linknest/internal/config"
	"linknest/internal/db"
	"linknest/internal/handlers"
	"linknest/internal/middleware"
	"linknest/internal/router"
	"linknest/internal/services"
	"linknest/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	// Initialize Database
	gdb, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("init database failed", "err", err)
	}
	logger.Info("database connection established")

	// 进程内 TTL 缓存：排行榜结果 + 本地限流计数
	cache, err := utils.NewCache(500)
	if err != nil {
		logger.Fatalw("init cache failed", "err", err)
	}

	// 限流计数存储：配了 Redis 走 Redis，否则退化为进程内缓存
	var counterStore services.CounterStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		counterStore = services.NewRedisCounterStore(client)
		logger.Infow("rate limit counters on redis", "addr", cfg.RedisAddr)
	} else {
		counterStore = services.NewLocalCounterStore(cache)
		logger.Info("rate limit counters in process (REDIS_ADDR not set)")
	}
	limiter := services.NewRateLimiter(counterStore, logger)

	// Services
	mailService := services.NewMailService(cfg, logger)
	voteService := services.NewVoteService(gdb, limiter, logger)
	leaderboardService := services.NewLeaderboardService(gdb, cache, logger)
	hotnessService := services.NewHotnessService(gdb, logger)

	// 启动时先跑一轮热度，再交给每小时的定时任务
	if n, err := hotnessService.Recompute(); err != nil {
		logger.Warnw("initial hotness recompute failed", "err", err)
	} else {
		logger.Infow("initial hotness recompute finished", "posts", n)
	}
	cronJob, err := hotnessService.StartSchedule()
	if err != nil {
		logger.Fatalw("start hotness schedule failed", "err", err)
	}
	defer cronJob.Stop()

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("linknest_session", store))
	r.Use(middleware.LoadUser(gdb))

	router.RegisterRoutes(r, &router.Handlers{
		Auth:        handlers.NewAuthHandler(gdb, mailService, limiter),
		Story:       handlers.NewStoryHandler(gdb, limiter, logger),
		Vote:        handlers.NewVoteHandler(voteService),
		User:        handlers.NewUserHandler(gdb, leaderboardService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		SEO:         handlers.NewSEOHandler(gdb, cfg.SiteURL),
	})

	logger.Infof("linknest server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalw("server exited", "err", err)
	}
}
