package chat_hub

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/cydxin/chat-hub/call"
	"github.com/cydxin/chat-hub/event"
	"github.com/cydxin/chat-hub/middleware"
	"github.com/cydxin/chat-hub/models"
	"github.com/cydxin/chat-hub/ratelimit"
	"github.com/cydxin/chat-hub/response"
	"github.com/cydxin/chat-hub/room"
	"github.com/cydxin/chat-hub/service"
	"github.com/cydxin/chat-hub/session"
	"github.com/gin-gonic/gin"
)

type ChatEngine struct {
	config *Config

	// Bus 所有事件（登录、消息、房间、通话）都从这里发布
	Bus      *event.Bus
	Sessions *session.Manager
	Rooms    *room.Registry
	Calls    *call.Manager

	UserService     *service.UserService
	SessionService  *service.SessionService
	AuthService     *service.AuthService // 鉴权服务
	RoomService     *service.RoomService
	MsgService      *service.MessageService
	CallService     *service.CallService
	PresenceService *service.PresenceService
	WsServer        *WsServer

	limiter *ratelimit.SendLimiter
	wsSub   *event.Subscription
	wsDone  chan struct{}
}

var (
	Instance *ChatEngine
	once     sync.Once
)

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) *ChatEngine {
	once.Do(func() {
		c := &Config{
			TablePrefix: models.DefaultTablePrefix,
		}
		for _, opt := range opts {
			opt(c)
		}
		Instance = newEngine(c)
	})

	return Instance
}

func newEngine(c *Config) *ChatEngine {
	e := &ChatEngine{config: c, wsDone: make(chan struct{})}

	applyTablePrefix(c.TablePrefix)
	if c.Service.Debug && c.DB != nil {
		c.DB = c.DB.Debug()
	}

	e.Bus = event.NewBus(c.EventBuffer)
	e.Sessions = session.NewManager(e.Bus)
	e.Rooms = room.NewRegistry()
	e.limiter = ratelimit.NewSendLimiter(c.SendLimit, c.SendBurst)

	// 初始化 WS
	e.WsServer = NewWsServer()
	e.WsServer.grace = c.SessionGrace
	e.WsServer.onOnline = e.onUserOnline
	e.WsServer.onOffline = e.onUserOffline
	e.WsServer.onWriteError = e.onWriteError
	e.WsServer.onActive = e.onUserActive
	e.bindWsHandlersOnMessage()
	go e.WsServer.Run()

	baseService := &service.Service{
		DB:  c.DB,
		RDB: c.RDB,
	}

	e.UserService = service.NewUserService(baseService)
	e.AuthService = service.NewAuthService(c.RDB)
	e.SessionService = service.NewSessionService(baseService, e.UserService, e.AuthService, e.Sessions)
	e.SessionService.SetTokenTTL(c.TokenTTL)
	e.RoomService = service.NewRoomService(baseService)
	e.MsgService = service.NewMessageService(baseService)
	e.CallService = service.NewCallService(baseService)
	e.PresenceService = service.NewPresenceService(baseService)

	e.Calls = call.New(e.Bus, wsSignaler{hub: e.WsServer}, c.CallTimeout)
	e.Calls.OnEnded(e.saveCallRecord)

	// 迁移表
	if c.DB != nil && !c.SkipAutoMigrate {
		if err := e.AutoMigrate(); err != nil {
			log.Printf("AutoMigrate failed: %v", err)
		}
	}

	// 事件总线 -> WS 推送。无界订阅，只有客户端自己的发送缓冲满了才会丢
	e.wsSub = e.Bus.Subscribe(event.Unbounded())
	go e.pushEvents(e.wsSub)

	return e
}

// pushEvents 把发给某个用户的事件原样推到他的所有 WS 连接
func (c *ChatEngine) pushEvents(sub *event.Subscription) {
	defer close(c.wsDone)
	for evt := range sub.C() {
		if evt.UserID == 0 {
			continue
		}
		b, err := json.Marshal(evt)
		if err != nil {
			log.Printf("marshal event %s: %v", evt.Type, err)
			continue
		}
		c.WsServer.SendToUser(evt.UserID, b)
	}
}

// Shutdown 挂断全部通话，关闭事件总线和 WS hub。之后的事件都会被丢弃。
func (c *ChatEngine) Shutdown() {
	c.Calls.Close()
	c.Bus.Close()
	<-c.wsDone
	c.WsServer.Close()
}

// checkSession token 有效之后的会话检查：登录失败过的会话要求重新登录，
// 其余情况（例如服务重启后状态机里没有记录）恢复为已登录。
func (c *ChatEngine) checkSession(_ context.Context, userID uint64) error {
	if c.Sessions.Get(userID) == session.Failed {
		return ErrSessionFailed
	}
	c.resumeSession(userID)
	return nil
}

func (c *ChatEngine) resumeSession(userID uint64) {
	if c.Sessions.BeginOrJoin(userID) {
		_ = c.Sessions.Authenticated(userID)
	}
}

func (c *ChatEngine) saveCallRecord(snap call.Snapshot) {
	if c.config.DB == nil {
		return
	}
	if err := c.CallService.SaveRecord(snap); err != nil {
		log.Printf("CALL [%s]: save record: %v", snap.ID, err)
	}
}

// wsSignaler 通话帧走 WS 推给对方
type wsSignaler struct {
	hub *WsServer
}

func (s wsSignaler) Send(userID uint64, payload any) error {
	if !s.hub.Online(userID) {
		return ErrPeerOffline
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.hub.SendToUser(userID, b)
	return nil
}

// ServeWS 处理 WebSocket 请求：先用 token 鉴权（Bearer 或 ?token=），再升级连接
func (c *ChatEngine) ServeWS(w http.ResponseWriter, r *http.Request) {
	uid, _, err := c.AuthService.AuthenticateRequest(r.Context(), r)
	if err == nil {
		err = c.checkSession(r.Context(), uid)
	}
	if err != nil {
		response.Error(response.CodeTokenInvalid, err.Error()).WriteJSONWithStatus(w, http.StatusUnauthorized)
		return
	}
	user, err := c.UserService.GetUser(uid)
	if err == nil && user != nil {
		c.WsServer.ServeWS(w, r, uid, user.Username, user.Nickname, user.Avatar)
		return
	}
	c.WsServer.ServeWS(w, r, uid, "")
}

// GinHandleWS gin 版本的 ServeWS
func (c *ChatEngine) GinHandleWS(ctx *gin.Context) {
	c.ServeWS(ctx.Writer, ctx.Request)
}

// GinAuthMiddleware 返回配置好的 Gin 鉴权中间件
// 使用 ChatEngine 内部的 AuthService 和 Redis 配置
//
// 使用示例:
//
//	engine := chat_hub.NewEngine(...)
//	r := gin.Default()
//	r.Use(engine.GinAuthMiddleware(nil)) // 使用默认配置
//
// 未设置 opt.Session 时使用引擎的会话检查。
func (c *ChatEngine) GinAuthMiddleware(opt *middleware.AuthOptions) gin.HandlerFunc {
	var o middleware.AuthOptions
	if opt != nil {
		o = *opt
	}
	if o.Session == nil {
		o.Session = c.checkSession
	}
	return middleware.GinAuthMiddleware(c.AuthService, &o)
}
