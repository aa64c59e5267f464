package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

var (
	// 默认：每秒 1 条，允许突发 10 条
	DefaultLimit = rate.Every(time.Second)
	DefaultBurst = 10

	// 用户长时间不发送后自动回收其 limiter
	DefaultExpire = 5 * time.Minute

	defaultSize = 10000
)

// SendLimiter 按用户限制发送频率。
// 每个发送者一个 rate.Limiter，存在带过期的 LRU 中。
type SendLimiter struct {
	limit rate.Limit
	burst int

	mu    sync.Mutex
	users *expirable.LRU[uint64, *rate.Limiter]
}

// NewSendLimiter limit<=0 时使用默认值
func NewSendLimiter(limit rate.Limit, burst int) *SendLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &SendLimiter{
		limit: limit,
		burst: burst,
		users: expirable.NewLRU[uint64, *rate.Limiter](defaultSize, nil, DefaultExpire),
	}
}

// Allow 本次发送是否放行
func (l *SendLimiter) Allow(userID uint64) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	limiter, ok := l.users.Get(userID)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.users.Add(userID, limiter)
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// Forget 清除用户的限流状态（例如用户下线）
func (l *SendLimiter) Forget(userID uint64) {
	if l == nil {
		return
	}
	l.users.Remove(userID)
}
