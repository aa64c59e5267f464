package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cydxin/chat-hub/cons"
	"github.com/go-redis/redis/v8"
)

// PresenceService 在线状态缓存。
// Redis Key：hub:presence:{userID} -> available/away（离线即删除），带 TTL 防止进程崩溃后残留。
type PresenceService struct {
	*Service
	ttl time.Duration
}

const defaultPresenceTTL = 10 * time.Minute

func NewPresenceService(s *Service) *PresenceService {
	log.Println("NewPresenceService")
	return &PresenceService{Service: s, ttl: defaultPresenceTTL}
}

func (s *PresenceService) key(userID uint64) string {
	return fmt.Sprintf("hub:presence:%d", userID)
}

// Set 写入在线状态；unavailable 直接删除
func (s *PresenceService) Set(ctx context.Context, userID uint64, kind string) error {
	if s.RDB == nil {
		return ErrNoRedis
	}
	if kind == cons.PresenceUnavailable {
		return s.RDB.Del(ctx, s.key(userID)).Err()
	}
	return s.RDB.Set(ctx, s.key(userID), kind, s.ttl).Err()
}

// Touch 续期（心跳时调用）
func (s *PresenceService) Touch(ctx context.Context, userID uint64) error {
	if s.RDB == nil {
		return ErrNoRedis
	}
	return s.RDB.Expire(ctx, s.key(userID), s.ttl).Err()
}

// Get 没有记录视为 unavailable
func (s *PresenceService) Get(ctx context.Context, userID uint64) (string, error) {
	if s.RDB == nil {
		return "", ErrNoRedis
	}
	v, err := s.RDB.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return cons.PresenceUnavailable, nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Batch 批量查询
func (s *PresenceService) Batch(ctx context.Context, userIDs []uint64) (map[uint64]string, error) {
	out := make(map[uint64]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	if s.RDB == nil {
		return nil, ErrNoRedis
	}
	keys := make([]string, len(userIDs))
	for i, uid := range userIDs {
		keys[i] = s.key(uid)
	}
	vals, err := s.RDB.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, uid := range userIDs {
		if v, ok := vals[i].(string); ok && v != "" {
			out[uid] = v
		} else {
			out[uid] = cons.PresenceUnavailable
		}
	}
	return out, nil
}
