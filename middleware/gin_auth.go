package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cydxin/chat-hub/response"
	"github.com/cydxin/chat-hub/service"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserIDKey gin context 里保存 user id 的 key
	ContextUserIDKey = "user_id"
	ContextTokenKey  = "token"
)

// AuthOptions 可选配置，零值字段取默认值。
type AuthOptions struct {
	// HeaderKey 默认 Authorization，值为 "Bearer <token>"
	HeaderKey string
	// QueryKey 默认 token，header 里没有时从 query 取
	QueryKey string
	// UserIDKey/TokenKey 写入 gin.Context 的 key
	UserIDKey string
	TokenKey  string
	// RefreshTTL 大于 0 时每次鉴权成功把 token 续期到该时长（滑动过期）
	RefreshTTL time.Duration
	// Session token 有效之后再检查该用户的会话，返回错误则 401。
	// 引擎用它拒绝会话已失败的用户，并为重启后只剩 token 的用户恢复会话。
	Session func(ctx context.Context, userID uint64) error
}

func (o *AuthOptions) withDefaults() AuthOptions {
	var out AuthOptions
	if o != nil {
		out = *o
	}
	if out.HeaderKey == "" {
		out.HeaderKey = "Authorization"
	}
	if out.QueryKey == "" {
		out.QueryKey = "token"
	}
	if out.UserIDKey == "" {
		out.UserIDKey = ContextUserIDKey
	}
	if out.TokenKey == "" {
		out.TokenKey = ContextTokenKey
	}
	return out
}

func (o AuthOptions) token(c *gin.Context) string {
	if t := service.BearerToken(c.GetHeader(o.HeaderKey)); t != "" {
		return t
	}
	return strings.TrimSpace(c.Query(o.QueryKey))
}

func abort(c *gin.Context, status, code int, msg string) {
	c.Header("Content-Type", "application/json")
	c.AbortWithStatusJSON(status, response.Error(code, msg))
}

// GinAuthMiddleware token 鉴权，成功后把 userID 和 token 写入 gin.Context。
//
//	router.Use(middleware.GinAuthMiddleware(authService, nil))
func GinAuthMiddleware(auth *service.AuthService, opt *AuthOptions) gin.HandlerFunc {
	cfg := opt.withDefaults()

	return func(c *gin.Context) {
		if auth == nil {
			abort(c, http.StatusInternalServerError, response.CodeInternalError, "auth service is nil")
			return
		}

		token := cfg.token(c)
		ctx := c.Request.Context()
		uid, err := auth.Authenticate(ctx, token)
		if err != nil {
			abort(c, http.StatusUnauthorized, response.CodeTokenInvalid, err.Error())
			return
		}
		if cfg.Session != nil {
			if err := cfg.Session(ctx, uid); err != nil {
				abort(c, http.StatusUnauthorized, response.CodeTokenInvalid, err.Error())
				return
			}
		}

		if cfg.RefreshTTL > 0 {
			if err := auth.RefreshTokenTTL(ctx, token, cfg.RefreshTTL); err != nil {
				log.Printf("refresh token ttl user=%d: %v", uid, err)
			}
		}

		c.Set(cfg.UserIDKey, uid)
		c.Set(cfg.TokenKey, token)
		c.Next()
	}
}
