package main

import (
	"flag"
	"log"
	"math/rand"
	"time"

	"linknest/internal/config"
	"linknest/internal/db"
	"linknest/internal/models"
	"linknest/internal/utils"

	"github.com/jaswdr/faker"
	"go.uber.org/zap"
)

// 开发用数据填充：造一批用户/帖子/评论/投票，
// 然后按正式口径重算分数和热度。
func main() {
	users := flag.Int("users", 20, "number of users to create")
	posts := flag.Int("posts", 60, "number of posts to create")
	flag.Parse()

	cfg := config.Load()

	zl, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger := zl.Sugar()

	gdb, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("init database failed", "err", err)
	}

	f := faker.New()
	now := time.Now()

	var createdUsers []models.User
	for i := 0; i < *users; i++ {
		hash, _ := utils.HashPassword(f.Internet().Password())
		u := models.User{
			Username: f.Internet().User(),
			Email:    f.Internet().Email(),
			Password: hash,
			Bio:      f.Lorem().Sentence(8),
		}
		if err := gdb.Create(&u).Error; err != nil {
			logger.Warnw("create user failed", "err", err)
			continue
		}
		createdUsers = append(createdUsers, u)
	}
	if len(createdUsers) == 0 {
		logger.Fatal("no users created, aborting")
	}

	var createdPosts []models.Post
	for i := 0; i < *posts; i++ {
		author := createdUsers[rand.Intn(len(createdUsers))]
		p := models.Post{
			UserID:    author.ID,
			Title:     f.Lorem().Sentence(6),
			URL:       f.Internet().URL(),
			Clicks:    rand.Intn(200),
			CreatedAt: now.Add(-time.Duration(rand.Intn(10*24)) * time.Hour),
		}
		if rand.Intn(3) == 0 {
			p.URL = ""
			p.Content = f.Lorem().Paragraph(3)
		}
		if err := gdb.Create(&p).Error; err != nil {
			logger.Warnw("create post failed", "err", err)
			continue
		}
		createdPosts = append(createdPosts, p)
	}

	for _, p := range createdPosts {
		// 评论
		for i := 0; i < rand.Intn(6); i++ {
			commenter := createdUsers[rand.Intn(len(createdUsers))]
			c := models.Comment{
				PostID:    p.ID,
				UserID:    commenter.ID,
				Content:   f.Lorem().Sentence(12),
				CreatedAt: p.CreatedAt.Add(time.Duration(rand.Intn(48)) * time.Hour),
			}
			if err := gdb.Create(&c).Error; err != nil {
				logger.Warnw("create comment failed", "err", err)
			}
		}

		// 投票：每个用户最多一票，直接写台账
		for _, voter := range createdUsers {
			if rand.Intn(3) != 0 {
				continue
			}
			direction := models.DirectionUp
			if rand.Intn(5) == 0 {
				direction = models.DirectionDown
			}
			v := models.Vote{
				UserID:     voter.ID,
				EntityType: models.EntityPost,
				EntityID:   p.ID,
				Direction:  direction,
			}
			if err := gdb.Create(&v).Error; err != nil {
				logger.Warnw("create vote failed", "err", err)
			}
		}
	}

	// 从台账和评论表重算缓存字段，再按公式写热度
	for _, p := range createdPosts {
		var score int
		gdb.Model(&models.Vote{}).
			Select("COALESCE(SUM(CASE WHEN direction = 'up' THEN 1 ELSE -1 END), 0)").
			Where("entity_type = ? AND entity_id = ?", models.EntityPost, p.ID).
			Scan(&score)

		var comments int64
		gdb.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&comments)

		hotness := utils.CalculateHotness(score, int(comments), now.Sub(p.CreatedAt).Hours())

		gdb.Model(&models.Post{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"score":          score,
			"comments_count": comments,
			"hotness":        hotness,
		})
	}

	logger.Infow("seed finished", "users", len(createdUsers), "posts", len(createdPosts))
}
