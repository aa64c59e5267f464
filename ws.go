package chat_hub

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小（通话帧也走这里）
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Client ws和hub的连接
// 说明：Client 代表“某个具体 websocket 连接”，用户级别共享的数据放到 UserSession。
type Client struct {
	hub *WsServer

	// 🔗链接
	conn *websocket.Conn

	// 消息缓冲区
	send chan []byte

	// UserID 和用户关联
	UserID uint64

	// session 指向用户级别共享状态
	session *UserSession

	// failed 写失败过，hub.mu 保护
	failed bool

	// Name Nickname Avatar
	Name string

	Nickname string

	Avatar string
}

// UserSession 用户级别共享状态（同一用户多设备/多连接复用）
type UserSession struct {
	UserID   uint64
	Name     string
	Nickname string
	Avatar   string

	mu       sync.Mutex
	lastSeen time.Time
}

// touch 记录活跃时间，返回上一次的
func (s *UserSession) touch() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.lastSeen
	s.lastSeen = time.Now()
	return prev
}

// readPump 将消息从client (websocket 连接) 到hub管理。
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error: %v", err)
			}
			break
		}
		c.hub.touch(c.UserID)
		c.hub.handleMessage(c, message)
	}
}

// writePump 将消息从hub管理写到具体的client (websocket 连接)。
// 写失败时上报 hub，由 engine 发布 chat.fail。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// 每条消息一个 frame，客户端按 JSON 逐条解析
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.reportWriteError(c, err)
				return
			}

			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					c.hub.reportWriteError(c, err)
					return
				}
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("writePump 写入ping失败")
				return
			}
		}
	}
}

type lifecycleKind uint8

const (
	lifecycleOnline lifecycleKind = iota
	lifecycleOffline
	lifecycleWriteError
)

// activeInterval 上行消息间隔超过它才回调 onActive（续期在线状态）
const activeInterval = time.Minute

type lifecycleEvent struct {
	kind   lifecycleKind
	userID uint64
}

type WsServer struct {
	clients map[*Client]bool
	// 用户ID ->该用户所有活跃的Websocket连接（支持多设备）
	userClients map[uint64][]*Client

	// 用户级别共享 session
	Sessions map[uint64]*UserSession

	// 用户ID -> 离线宽限定时器（断开-重连窗口）
	graceTimers map[uint64]*time.Timer
	grace       time.Duration

	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// 上下线回调按顺序在 lifecycleLoop 里执行，不阻塞 Run。
	// 队列不设上限：丢掉一个离线事件会让用户永远留在房间和通话里。
	lmu       sync.Mutex
	pending   []lifecycleEvent
	wake      chan struct{}
	onOnline  func(userID uint64)
	onOffline func(userID uint64)
	// onWriteError 在写失败的连接被标记后调用，此时 ConnCount 已不含它
	onWriteError func(userID uint64)
	// onActive 用户有上行消息且距上次超过 activeInterval
	onActive func(userID uint64)

	// 回调处理消息
	onMessage func(client *Client, msg []byte)

	// 推送时因连接缓冲满被丢弃的帧
	dropped atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
}

func NewWsServer() *WsServer {
	return &WsServer{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		userClients: make(map[uint64][]*Client),
		Sessions:    make(map[uint64]*UserSession),
		graceTimers: make(map[uint64]*time.Timer),
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

// Run 处理注册/注销，Close 后返回
func (h *WsServer) Run() {
	go h.lifecycleLoop()

	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			// 1) 复用/创建用户级 session
			sess := h.Sessions[client.UserID]
			if sess == nil {
				sess = &UserSession{UserID: client.UserID, Name: client.Name, Nickname: client.Nickname, Avatar: client.Avatar, lastSeen: time.Now()}
				h.Sessions[client.UserID] = sess
			} else {
				// 更新用户资料（以最新连接为准）
				sess.Name = client.Name
				sess.Nickname = client.Nickname
				sess.Avatar = client.Avatar
				sess.touch()
			}
			client.session = sess

			// 2) 宽限期内重连：取消离线处理，也不算重新上线
			_, pending := h.graceTimers[client.UserID]
			if pending {
				h.graceTimers[client.UserID].Stop()
				delete(h.graceTimers, client.UserID)
			}
			first := len(h.userClients[client.UserID]) == 0 && !pending

			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mu.Unlock()

			if first {
				h.emit(lifecycleEvent{kind: lifecycleOnline, userID: client.UserID})
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.removeUserClientLocked(client)
			}

			// 3) 最后一个连接断开：宽限期后再做离线处理
			uid := client.UserID
			if len(h.userClients[uid]) == 0 {
				if _, ok := h.graceTimers[uid]; !ok {
					h.scheduleOfflineLocked(uid)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Close 停止 Run 和 lifecycleLoop，关闭所有连接的发送队列。可重复调用。
func (h *WsServer) Close() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		for client := range h.clients {
			close(client.send)
		}
		h.clients = make(map[*Client]bool)
		h.userClients = make(map[uint64][]*Client)
		for uid, t := range h.graceTimers {
			t.Stop()
			delete(h.graceTimers, uid)
		}
		h.mu.Unlock()
	})
}

func (h *WsServer) removeUserClientLocked(client *Client) {
	userConns := h.userClients[client.UserID]
	for i, conn := range userConns {
		if conn == client {
			h.userClients[client.UserID] = append(userConns[:i], userConns[i+1:]...)
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}
}

func (h *WsServer) scheduleOfflineLocked(uid uint64) {
	if h.grace <= 0 {
		delete(h.Sessions, uid)
		h.emit(lifecycleEvent{kind: lifecycleOffline, userID: uid})
		return
	}
	h.graceTimers[uid] = time.AfterFunc(h.grace, func() {
		// timer 回调里用 uid 查当前状态
		h.mu.Lock()
		if len(h.userClients[uid]) > 0 {
			h.mu.Unlock()
			return
		}
		delete(h.Sessions, uid)
		delete(h.graceTimers, uid)
		h.mu.Unlock()
		h.emit(lifecycleEvent{kind: lifecycleOffline, userID: uid})
	})
}

// emit 不阻塞，可以在持有 h.mu 时调用
func (h *WsServer) emit(evt lifecycleEvent) {
	h.lmu.Lock()
	h.pending = append(h.pending, evt)
	h.lmu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *WsServer) lifecycleLoop() {
	for {
		select {
		case <-h.wake:
		case <-h.done:
			return
		}

		h.lmu.Lock()
		batch := h.pending
		h.pending = nil
		h.lmu.Unlock()

		for _, evt := range batch {
			var fn func(uint64)
			switch evt.kind {
			case lifecycleOnline:
				fn = h.onOnline
			case lifecycleOffline:
				fn = h.onOffline
			case lifecycleWriteError:
				fn = h.onWriteError
			}
			if fn != nil {
				fn(evt.userID)
			}
		}
	}
}

func (h *WsServer) reportWriteError(c *Client, err error) {
	log.Printf("writePump user=%d: %v", c.UserID, err)
	h.mu.Lock()
	c.failed = true
	h.mu.Unlock()
	h.emit(lifecycleEvent{kind: lifecycleWriteError, userID: c.UserID})
}

func (h *WsServer) touch(userID uint64) {
	h.mu.RLock()
	sess := h.Sessions[userID]
	h.mu.RUnlock()
	if sess == nil {
		return
	}
	if prev := sess.touch(); time.Since(prev) >= activeInterval && h.onActive != nil {
		h.onActive(userID)
	}
}

func (h *WsServer) handleMessage(client *Client, msg []byte) {
	if h.onMessage != nil {
		h.onMessage(client, msg)
	}
}

func (h *WsServer) SetOnMessage(fn func(client *Client, msg []byte)) {
	h.onMessage = fn
}

// ServeWS 处理ws的请求
func (h *WsServer) ServeWS(w http.ResponseWriter, r *http.Request, userID uint64, name string, extras ...string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	nickname := ""
	avatar := ""
	if len(extras) > 0 {
		nickname = extras[0]
	}
	if len(extras) > 1 {
		avatar = extras[1]
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		UserID:   userID,
		Name:     name,
		Nickname: nickname,
		Avatar:   avatar,
	}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}
	log.Println("注册进去: ", client.UserID)

	go client.writePump()
	go client.readPump()
}

// SendToUser 发送消息到用户的所有连接。
// 持有读锁发送：unregister/Close 在写锁下 close(send)，两者不会并发。
func (h *WsServer) SendToUser(userID uint64, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.userClients[userID] {
		if client.failed {
			continue
		}
		select {
		case client.send <- msg:
		default:
			// 连接太慢，丢弃避免阻塞
			h.dropped.Add(1)
			log.Printf("SendToUser user=%d: send buffer full, drop", userID)
		}
	}
}

// Dropped 因连接发送缓冲满丢弃的帧数
func (h *WsServer) Dropped() uint64 {
	return h.dropped.Load()
}

// Online 用户当前是否有连接
func (h *WsServer) Online(userID uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID]) > 0
}

// ConnCount 用户还能正常写入的连接数
func (h *WsServer) ConnCount(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, client := range h.userClients[userID] {
		if !client.failed {
			n++
		}
	}
	return n
}
