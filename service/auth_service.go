package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrMissingToken = errors.New("missing token")

// AuthService 鉴权：签发 token、解析请求里的 token、校验与注销。
// HTTP 中间件和 WS 握手都走这里。
type AuthService struct {
	tokens *TokenStore
}

func NewAuthService(rdb *redis.Client) *AuthService {
	return &AuthService{tokens: NewTokenStore(rdb)}
}

// BearerToken 解析 "Bearer <token>"，格式不对返回空串
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// ExtractToken 从 HTTP 请求中提取 token：优先 Authorization: Bearer，其次 query: token。
func (a *AuthService) ExtractToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	if t := BearerToken(r.Header.Get("Authorization")); t != "" {
		return t
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Authenticate 根据 token 获取 userID。
func (a *AuthService) Authenticate(ctx context.Context, token string) (uint64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, ErrMissingToken
	}
	return a.tokens.Lookup(ctx, token)
}

// AuthenticateRequest 从请求里抽 token 并鉴权。
func (a *AuthService) AuthenticateRequest(ctx context.Context, r *http.Request) (uint64, string, error) {
	t := a.ExtractToken(r)
	uid, err := a.Authenticate(ctx, t)
	return uid, t, err
}

// IssueToken 为用户签发新 token
func (a *AuthService) IssueToken(ctx context.Context, userID uint64, ttl time.Duration) (string, error) {
	return a.tokens.Issue(ctx, userID, ttl)
}

// RevokeToken 注销单个 token，返回该用户剩余的有效 token 数。
// 空 token 或已失效的 token 返回 ErrTokenInvalid / ErrMissingToken。
func (a *AuthService) RevokeToken(ctx context.Context, token string) (userID uint64, remaining int, err error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, 0, ErrMissingToken
	}
	return a.tokens.Revoke(ctx, token)
}

// RevokeAllTokensByUser 注销用户全部 token。
func (a *AuthService) RevokeAllTokensByUser(ctx context.Context, userID uint64) error {
	_, err := a.tokens.RevokeAll(ctx, userID)
	return err
}

// RefreshTokenTTL 对 token 续期（可选能力，用于滑动过期）。
func (a *AuthService) RefreshTokenTTL(ctx context.Context, token string, ttl time.Duration) error {
	return a.tokens.Refresh(ctx, token, ttl)
}
