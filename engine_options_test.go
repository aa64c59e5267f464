package chat_hub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cydxin/chat-hub/cons"
	"github.com/cydxin/chat-hub/event"
	"github.com/cydxin/chat-hub/models"
	"github.com/cydxin/chat-hub/session"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func TestTablePrefix_AppliedToQueries(t *testing.T) {
	t.Cleanup(func() { models.SetTablePrefix(models.DefaultTablePrefix) })

	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()
	e := newTestEngine(t, &Config{DB: gormDB, TablePrefix: "chat_"})

	mock.ExpectQuery("SELECT \\* FROM `chat_room` WHERE name = \\?").
		WillReturnRows(roomRows(3, "lobby", 1, true))
	if err := e.EnterRoom(5, "lobby"); err != nil {
		t.Fatalf("EnterRoom: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestTablePrefix_InvalidFallsBack(t *testing.T) {
	t.Cleanup(func() { models.SetTablePrefix(models.DefaultTablePrefix) })

	newTestEngine(t, &Config{TablePrefix: "im; drop"})
	if got := models.TablePrefix(); got != models.DefaultTablePrefix {
		t.Fatalf("prefix = %q, want default", got)
	}
}

func TestServiceDebug_WrapsDB(t *testing.T) {
	gormDB, _, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	e := newTestEngine(t, &Config{DB: gormDB, Service: ServiceConfig{Debug: true}})
	if e.config.DB == gormDB {
		t.Fatal("debug session not applied")
	}
	plain := newTestEngine(t, &Config{DB: gormDB})
	if plain.config.DB != gormDB {
		t.Fatal("db replaced without debug")
	}
}

func TestTokenTTLOption(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()
	rdb, mr := newTestRedis(t)
	e := newTestEngine(t, &Config{DB: gormDB, RDB: rdb, TokenTTL: 2 * time.Hour})

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `im_user` WHERE username = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uid", "username", "nickname", "password", "avatar", "online_status", "last_login_at", "last_active_at", "created_at", "updated_at", "deleted_at"}).
			AddRow(9, "uid-9", "bob", "bob", string(hash), "", 0, nil, nil, now, now, nil))
	mock.ExpectExec("UPDATE `im_user` SET").WillReturnResult(sqlmock.NewResult(0, 1))

	resp, err := e.SessionService.Login(context.Background(), "bob", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if ttl := mr.TTL("hub:token:" + resp.Token); ttl != 2*time.Hour {
		t.Fatalf("token ttl = %s, want 2h", ttl)
	}
}

func TestCheckSession(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	// 只剩 token（例如重启后）：恢复为已登录
	if err := e.checkSession(ctx, 3); err != nil {
		t.Fatalf("checkSession: %v", err)
	}
	if st := e.Sessions.Get(3); st != session.Authenticated {
		t.Fatalf("state = %s, want authenticated", st)
	}
	if err := e.checkSession(ctx, 3); err != nil {
		t.Fatalf("second checkSession: %v", err)
	}

	if err := e.Sessions.Begin(8); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := e.Sessions.Fail(8, session.ErrAuthFailed); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if err := e.checkSession(ctx, 8); !errors.Is(err, ErrSessionFailed) {
		t.Fatalf("expected ErrSessionFailed, got %v", err)
	}
	if st := e.Sessions.Get(8); st != session.Failed {
		t.Fatalf("state = %s, want failed", st)
	}
}

func TestGinAuthMiddleware_RejectsFailedSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, _ := newTestRedis(t)
	e := newTestEngine(t, &Config{RDB: rdb})
	ctx := context.Background()

	r := gin.New()
	r.Use(e.GinAuthMiddleware(nil))
	r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	good, err := e.AuthService.IssueToken(ctx, 3, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	bad, err := e.AuthService.IssueToken(ctx, 8, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	_ = e.Sessions.Begin(8)
	_ = e.Sessions.Fail(8, session.ErrAuthFailed)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+good, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if st := e.Sessions.Get(3); st != session.Authenticated {
		t.Fatalf("session not resumed: %s", st)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+bad, nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("failed session: expected 401, got %d", w.Code)
	}
}

func TestPushEvents_BurstNotDropped(t *testing.T) {
	e := newTestEngine(t, nil)

	const n = 2000
	cl := &Client{hub: e.WsServer, send: make(chan []byte, n), UserID: 9}
	e.WsServer.mu.Lock()
	e.WsServer.clients[cl] = true
	e.WsServer.userClients[9] = append(e.WsServer.userClients[9], cl)
	e.WsServer.mu.Unlock()

	for i := 0; i < n; i++ {
		e.Bus.Publish(event.Event{Type: event.ChatPresence, UserID: 9, PeerID: 1, PresenceType: cons.PresenceAway})
	}

	got := 0
	deadline := time.After(5 * time.Second)
	for got < n {
		select {
		case <-cl.send:
			got++
		case <-deadline:
			t.Fatalf("delivered %d of %d", got, n)
		}
	}
	if d := e.WsServer.Dropped(); d != 0 {
		t.Fatalf("dropped = %d", d)
	}
}
