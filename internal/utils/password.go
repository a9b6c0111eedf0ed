package utils

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword 生成 bcrypt 密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword 校验明文密码与哈希是否匹配
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRandomCode 生成指定长度的随机码，用于魔法链接登录
func GenerateRandomCode(length int) string {
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeChars))))
		if err != nil {
			buf[i] = codeChars[0]
			continue
		}
		buf[i] = codeChars[n.Int64()]
	}
	return string(buf)
}
