package handlers

import (
	"linknest/internal/utils"

	"github.com/gin-gonic/gin"
)

// JSONError 统一的错误响应结构
func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// pageParams 解析分页参数，page 从 1 开始
func pageParams(c *gin.Context, perPage int) (page, limit, offset int) {
	page = 1
	if n := utils.StringToInt(c.Query("page")); n > 0 {
		page = n
	}
	return page, perPage, (page - 1) * perPage
}
