package service

import (
	"errors"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

var (
	ErrNoDB       = errors.New("数据库未配置")
	ErrNoRedis    = errors.New("redis 服务暂未开启")
	ErrBadRequest = errors.New("参数错误")
)

// Service 基础服务，包含数据库和 redis
type Service struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func (s *Service) ensureDB() error {
	if s == nil || s.DB == nil {
		return ErrNoDB
	}
	return nil
}
