package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// ErrTokenInvalid token 不存在或已过期
var ErrTokenInvalid = errors.New("token 无效或已过期")

// TokenStore 登录 token 存储，每次登录（每个设备）一个 token。
//
//	hub:token:{token}         -> userID，带 TTL
//	hub:user_tokens:{userID}  -> Set(token)
//
// 集合里可能残留已经自然过期的 token，LiveCount 时顺手清掉。
// 会话是否还在由 LiveCount 决定：最后一个 token 注销后会话结束。
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

func (s *TokenStore) ensure() error {
	if s == nil || s.rdb == nil {
		return ErrNoRedis
	}
	return nil
}

func tokenKey(token string) string {
	return "hub:token:" + token
}

func userTokensKey(userID uint64) string {
	return fmt.Sprintf("hub:user_tokens:%d", userID)
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Issue 签发并保存一个新 token
func (s *TokenStore) Issue(ctx context.Context, userID uint64, ttl time.Duration) (string, error) {
	if err := s.ensure(); err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	token, err := newToken()
	if err != nil {
		return "", err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, tokenKey(token), strconv.FormatUint(userID, 10), ttl)
	pipe.SAdd(ctx, userTokensKey(userID), token)
	// 集合比最长的 token 多活一天
	pipe.Expire(ctx, userTokensKey(userID), ttl+24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

// Lookup token -> userID
func (s *TokenStore) Lookup(ctx context.Context, token string) (uint64, error) {
	if err := s.ensure(); err != nil {
		return 0, err
	}
	val, err := s.rdb.Get(ctx, tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrTokenInvalid
	}
	if err != nil {
		return 0, err
	}
	uid, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad token value %q: %w", val, err)
	}
	return uid, nil
}

// Refresh 滑动续期
func (s *TokenStore) Refresh(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	uid, err := s.Lookup(ctx, token)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Expire(ctx, tokenKey(token), ttl)
	pipe.Expire(ctx, userTokensKey(uid), ttl+24*time.Hour)
	_, err = pipe.Exec(ctx)
	return err
}

// Revoke 注销一个 token，返回它属于的用户以及该用户剩余的有效 token 数。
// token 已经失效时返回 ErrTokenInvalid。
func (s *TokenStore) Revoke(ctx context.Context, token string) (userID uint64, remaining int, err error) {
	userID, err = s.Lookup(ctx, token)
	if err != nil {
		return 0, 0, err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, tokenKey(token))
	pipe.SRem(ctx, userTokensKey(userID), token)
	if _, err = pipe.Exec(ctx); err != nil {
		return userID, 0, err
	}
	remaining, err = s.LiveCount(ctx, userID)
	return userID, remaining, err
}

// RevokeAll 注销用户全部 token，返回注销的数量
func (s *TokenStore) RevokeAll(ctx context.Context, userID uint64) (int, error) {
	if err := s.ensure(); err != nil {
		return 0, err
	}
	tokens, err := s.rdb.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}

	pipe := s.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, tokenKey(t))
	}
	pipe.Del(ctx, userTokensKey(userID))
	_, err = pipe.Exec(ctx)
	return len(tokens), err
}

// LiveCount 用户当前有效的 token 数，同时从集合里移除已过期的
func (s *TokenStore) LiveCount(ctx context.Context, userID uint64) (int, error) {
	if err := s.ensure(); err != nil {
		return 0, err
	}
	tokens, err := s.rdb.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil {
		return 0, err
	}
	live := 0
	var stale []interface{}
	for _, t := range tokens {
		n, err := s.rdb.Exists(ctx, tokenKey(t)).Result()
		if err != nil {
			return 0, err
		}
		if n > 0 {
			live++
		} else {
			stale = append(stale, t)
		}
	}
	if len(stale) > 0 {
		if err := s.rdb.SRem(ctx, userTokensKey(userID), stale...).Err(); err != nil {
			return live, err
		}
	}
	return live, nil
}
