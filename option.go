package chat_hub

import (
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type ServiceConfig struct {
	Debug bool
}

type Config struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string
	Service     ServiceConfig

	// CallTimeout 呼叫无人接听的超时时间，默认 45s
	CallTimeout time.Duration

	// EventBuffer 每个订阅者的事件缓冲，满了丢弃
	EventBuffer int

	// SendLimit/SendBurst 每个用户发消息的速率
	SendLimit rate.Limit
	SendBurst int

	// SessionGrace 用户最后一个连接断开后，等待多久再做离线处理（离开房间/挂断/unavailable）。
	// 0 表示立即处理。
	SessionGrace time.Duration

	// TokenTTL 登录 token 有效期，默认 7 天
	TokenTTL time.Duration

	// SkipAutoMigrate 不在启动时建表
	SkipAutoMigrate bool
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

// WithTablePrefix 表名前缀，默认 im_。只允许字母、数字和下划线
func WithTablePrefix(prefix string) Option {
	return func(c *Config) {
		c.TablePrefix = prefix
	}
}

func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

// WithServiceDebug 打印 SQL
func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}

func WithCallTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.CallTimeout = d
	}
}

func WithEventBuffer(n int) Option {
	return func(c *Config) {
		c.EventBuffer = n
	}
}

// WithSendRateLimit 例：WithSendRateLimit(rate.Every(time.Second), 10)
func WithSendRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Config) {
		c.SendLimit = limit
		c.SendBurst = burst
	}
}

func WithSessionGrace(d time.Duration) Option {
	return func(c *Config) {
		c.SessionGrace = d
	}
}

func WithTokenTTL(d time.Duration) Option {
	return func(c *Config) {
		c.TokenTTL = d
	}
}

func WithSkipAutoMigrate(skip bool) Option {
	return func(c *Config) {
		c.SkipAutoMigrate = skip
	}
}
