// Package session 维护每个用户的连接/登录状态机：
//
//	Disconnected -> Connecting -> Authenticated
//	Connecting   -> Failed
//	任意状态      -> Disconnected（注销/断开）
//
// 状态变化通过 event.Bus 通知订阅者。
package session

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/cydxin/chat-hub/event"
)

// State 连接状态
type State uint8

const (
	Disconnected State = iota
	Connecting
	Authenticated
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// ErrorCode chat.fail 携带的错误码
type ErrorCode int

const (
	ErrConnectionRefused ErrorCode = 1 // 服务拒绝连接
	ErrConnectionClosed  ErrorCode = 2 // 连接被关闭
	ErrConnectionTimeout ErrorCode = 3 // 连接超时
	ErrAuthFailed        ErrorCode = 4 // 鉴权失败
	ErrUnknown           ErrorCode = 5
)

var ErrInvalidTransition = errors.New("invalid session state transition")

// Manager 按 userID 记录状态
type Manager struct {
	bus *event.Bus

	mu     sync.Mutex
	states map[uint64]State
}

func NewManager(bus *event.Bus) *Manager {
	return &Manager{bus: bus, states: make(map[uint64]State)}
}

// Get 未出现过的用户视为 Disconnected
func (m *Manager) Get(userID uint64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[userID]
}

// Begin 开始登录
func (m *Manager) Begin(userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.states[userID]
	if cur != Disconnected && cur != Failed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, Connecting)
	}
	m.states[userID] = Connecting
	return nil
}

// BeginOrJoin 原子地开始登录或加入进行中的登录。
// Disconnected/Failed -> Connecting，owner=true，调用方负责 Authenticated 或 Fail；
// 已经是 Connecting/Authenticated（另一端正在登录或已登录）时 owner=false，状态不变。
func (m *Manager) BeginOrJoin(userID uint64) (owner bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.states[userID] {
	case Connecting, Authenticated:
		return false
	}
	m.states[userID] = Connecting
	return true
}

// Authenticated 登录成功，发布 chat.login
func (m *Manager) Authenticated(userID uint64) error {
	m.mu.Lock()
	cur := m.states[userID]
	if cur != Connecting {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, Authenticated)
	}
	m.states[userID] = Authenticated
	m.mu.Unlock()

	log.Printf("SESSION: user=%d authenticated", userID)
	m.bus.Publish(event.Event{Type: event.ChatLogin, UserID: userID})
	return nil
}

// Fail 登录中失败发布 chat.login_failed；已登录的连接异常发布 chat.fail 并回到 Disconnected。
func (m *Manager) Fail(userID uint64, code ErrorCode) error {
	m.mu.Lock()
	cur := m.states[userID]
	var evt event.Event
	switch cur {
	case Connecting:
		m.states[userID] = Failed
		evt = event.Event{Type: event.ChatLoginFailed, UserID: userID, Code: int(code)}
	case Authenticated:
		delete(m.states, userID)
		evt = event.Event{Type: event.ChatFail, UserID: userID, Code: int(code)}
	default:
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, Failed)
	}
	m.mu.Unlock()

	log.Printf("SESSION: user=%d fail code=%d (was %s)", userID, code, cur)
	m.bus.Publish(evt)
	return nil
}

// Close 注销/断开，不发布事件
func (m *Manager) Close(userID uint64) {
	m.mu.Lock()
	delete(m.states, userID)
	m.mu.Unlock()
}

// Presence 发布 peerID 的在线状态给 userID
func (m *Manager) Presence(userID, peerID uint64, kind string) {
	m.bus.Publish(event.Event{Type: event.ChatPresence, UserID: userID, PeerID: peerID, PresenceType: kind})
}

// AuthenticatedUsers 当前已登录的用户
func (m *Manager) AuthenticatedUsers() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint64, 0, len(m.states))
	for uid, st := range m.states {
		if st == Authenticated {
			out = append(out, uid)
		}
	}
	return out
}
