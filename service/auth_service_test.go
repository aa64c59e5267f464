package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestAuthService_ExtractToken_BearerFirst(t *testing.T) {
	a := NewAuthService(nil)

	req := &http.Request{Header: make(http.Header), URL: &url.URL{RawQuery: "token=q"}}
	req.Header.Set("Authorization", "Bearer headerToken")

	got := a.ExtractToken(req)
	if got != "headerToken" {
		t.Fatalf("expected headerToken, got %q", got)
	}
}

func TestAuthService_ExtractToken_QueryFallback(t *testing.T) {
	a := NewAuthService(nil)

	u, _ := url.Parse("http://example.com/path?token=queryToken")
	req := &http.Request{Header: make(http.Header), URL: u}

	got := a.ExtractToken(req)
	if got != "queryToken" {
		t.Fatalf("expected queryToken, got %q", got)
	}
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb, _ := newTestRedisServer(t)
	return rdb
}

func newTestRedisServer(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestAuthService_IssueAuthenticateRevoke(t *testing.T) {
	ctx := context.Background()
	a := NewAuthService(newTestRedis(t))

	token, err := a.IssueToken(ctx, 42, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	uid, err := a.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected 42, got %d", uid)
	}

	owner, remaining, err := a.RevokeToken(ctx, token)
	if err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if owner != 42 || remaining != 0 {
		t.Fatalf("RevokeToken = (%d, %d), want (42, 0)", owner, remaining)
	}
	if _, err := a.Authenticate(ctx, token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid after revoke, got %v", err)
	}
	if _, _, err := a.RevokeToken(ctx, token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("second revoke: expected ErrTokenInvalid, got %v", err)
	}
}

func TestAuthService_RevokeReportsRemaining(t *testing.T) {
	ctx := context.Background()
	rdb, mr := newTestRedisServer(t)
	a := NewAuthService(rdb)

	phone, _ := a.IssueToken(ctx, 7, time.Hour)
	_, _ = a.IssueToken(ctx, 7, time.Minute)
	laptop, _ := a.IssueToken(ctx, 7, time.Hour)

	// 第二个 token 自然过期，不再算作在线的端
	mr.FastForward(2 * time.Minute)

	_, remaining, err := a.RevokeToken(ctx, phone)
	if err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("remaining = %d, want 1", remaining)
	}
	if n, _ := rdb.SCard(ctx, userTokensKey(7)).Result(); n != 1 {
		t.Fatalf("stale token not pruned, set size %d", n)
	}

	_, remaining, err = a.RevokeToken(ctx, laptop)
	if err != nil || remaining != 0 {
		t.Fatalf("RevokeToken(last) = %d, %v", remaining, err)
	}
}

func TestAuthService_RevokeWithoutRedis(t *testing.T) {
	a := NewAuthService(nil)
	if _, _, err := a.RevokeToken(context.Background(), "x"); !errors.Is(err, ErrNoRedis) {
		t.Fatalf("expected ErrNoRedis, got %v", err)
	}
	if _, _, err := a.RevokeToken(context.Background(), " "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for in, want := range cases {
		if got := BearerToken(in); got != want {
			t.Fatalf("BearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAuthService_RevokeAll(t *testing.T) {
	ctx := context.Background()
	a := NewAuthService(newTestRedis(t))

	t1, _ := a.IssueToken(ctx, 7, time.Hour)
	t2, _ := a.IssueToken(ctx, 7, time.Hour)
	if err := a.RevokeAllTokensByUser(ctx, 7); err != nil {
		t.Fatalf("RevokeAllTokensByUser: %v", err)
	}
	for _, tk := range []string{t1, t2} {
		if _, err := a.Authenticate(ctx, tk); err == nil {
			t.Fatalf("token %s still valid", tk)
		}
	}
}

func TestAuthService_MissingToken(t *testing.T) {
	a := NewAuthService(nil)
	if _, err := a.Authenticate(context.Background(), "  "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}
