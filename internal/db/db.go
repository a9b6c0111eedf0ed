package db

import (
	"fmt"
	"linknest/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init 建立数据库连接并自动迁移表结构
func Init(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true, // 多语句写入都走显式事务
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// Auto Migrate
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return gdb, nil
}
