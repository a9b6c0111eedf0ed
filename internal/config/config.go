package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config 汇总全部环境配置，启动时加载一次后显式传递，
// 避免在各处散落 os.Getenv。
type Config struct {
	Port          string
	DatabaseURL   string
	RedisAddr     string // 为空则限流计数退化为进程内缓存
	RedisPassword string
	SessionSecret string
	SiteURL       string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// Load 读取 .env（如果存在）和环境变量
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=linknest port=5432 sslmode=disable"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
		SiteURL:       getEnv("SITE_URL", "https://linknest.example.com"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      os.Getenv("SMTP_PORT"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
