package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cydxin/chat-hub/response"
	"github.com/cydxin/chat-hub/service"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func newRouter(t *testing.T, opt *AuthOptions) (*gin.Engine, *service.AuthService, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	auth := service.NewAuthService(rdb)

	r := gin.New()
	r.Use(GinAuthMiddleware(auth, opt))
	r.GET("/me", func(c *gin.Context) {
		uid, _ := c.Get(ContextUserIDKey)
		c.JSON(http.StatusOK, gin.H{"uid": uid, "token": c.GetString(ContextTokenKey)})
	})
	return r, auth, mr
}

func TestGinAuthMiddleware_MissingToken(t *testing.T) {
	r, _, _ := newRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGinAuthMiddleware_BearerAndQuery(t *testing.T) {
	r, auth, _ := newRouter(t, nil)
	token, err := auth.IssueToken(context.Background(), 9, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("bearer: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("query: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token=bogus", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bogus token: expected 401, got %d", w.Code)
	}
}

func TestGinAuthMiddleware_RefreshTTL(t *testing.T) {
	r, auth, mr := newRouter(t, &AuthOptions{RefreshTTL: time.Hour})
	token, err := auth.IssueToken(context.Background(), 9, time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	mr.FastForward(30 * time.Second)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// 不续期的话一分钟后已过期
	mr.FastForward(5 * time.Minute)
	if _, err := auth.Authenticate(context.Background(), token); err != nil {
		t.Fatalf("token should have been refreshed: %v", err)
	}
}

func TestGinAuthMiddleware_SessionHook(t *testing.T) {
	errFailed := errors.New("session failed")
	var checked []uint64
	r, auth, _ := newRouter(t, &AuthOptions{Session: func(_ context.Context, uid uint64) error {
		checked = append(checked, uid)
		if uid == 13 {
			return errFailed
		}
		return nil
	}})

	ok, err := auth.IssueToken(context.Background(), 9, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	bad, err := auth.IssueToken(context.Background(), 13, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+ok, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer "+bad)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("failed session: expected 401, got %d", w.Code)
	}
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != response.CodeTokenInvalid || body.Msg != errFailed.Error() {
		t.Fatalf("unexpected body: %#v", body)
	}

	// token 无效时不会走到会话检查
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token=bogus", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bogus token: expected 401, got %d", w.Code)
	}
	if len(checked) != 2 || checked[0] != 9 || checked[1] != 13 {
		t.Fatalf("session hook calls: %v", checked)
	}
}
