// Package call 管理一对一音视频通话的信令状态：
//
//	Ringing -> Accepted -> Active -> Ended(manually)
//	Ringing -> Rejected
//	Ringing -> Ended(opponent_did_not_answer)
//
// 媒体编解码不在这里处理，媒体帧只是透传的字节。
// 与传输层的耦合只有 Signaler 接口。
package call

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/cydxin/chat-hub/cons"
	"github.com/cydxin/chat-hub/event"
	"github.com/google/uuid"
)

// DefaultTimeout 呼叫无人接听的超时时间
const DefaultTimeout = 45 * time.Second

// Frame 转发给对方的媒体/信令帧
type Frame struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	From   uint64 `json:"from"`
	Data   []byte `json:"data"`
}

// Manager 持有所有进行中的通话
type Manager struct {
	bus     *event.Bus
	sig     Signaler
	timeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	// userID -> 当前通话 ID（一个用户同时只能有一个通话）
	byUser map[uint64]string

	providerMu sync.RWMutex
	providers  []TargetProvider

	endedMu sync.RWMutex
	ended   []func(Snapshot)
}

func New(bus *event.Bus, sig Signaler, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		bus:      bus,
		sig:      sig,
		timeout:  timeout,
		sessions: make(map[string]*Session),
		byUser:   make(map[uint64]string),
	}
}

// OnEnded 注册通话结束（拒绝/挂断/超时）回调，可注册多个。
func (m *Manager) OnEnded(fn func(Snapshot)) {
	m.endedMu.Lock()
	m.ended = append(m.ended, fn)
	m.endedMu.Unlock()
}

// AddTargetProvider 注册渲染目标提供者，返回取消函数
func (m *Manager) AddTargetProvider(p TargetProvider) (remove func()) {
	m.providerMu.Lock()
	m.providers = append(m.providers, p)
	m.providerMu.Unlock()
	return func() {
		m.providerMu.Lock()
		defer m.providerMu.Unlock()
		for i, cur := range m.providers {
			if cur == p {
				m.providers = append(m.providers[:i], m.providers[i+1:]...)
				return
			}
		}
	}
}

// Request caller 呼叫 callee
func (m *Manager) Request(ctx context.Context, caller, callee uint64, conf event.ConferenceType) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if caller == callee {
		return Snapshot{}, ErrSelfCall
	}
	if conf != event.ConferenceAudioAndVideo {
		return Snapshot{}, ErrUnsupportedConference
	}

	m.mu.Lock()
	if _, busy := m.byUser[caller]; busy {
		m.mu.Unlock()
		return Snapshot{}, ErrBusy
	}
	if _, busy := m.byUser[callee]; busy {
		m.mu.Unlock()
		return Snapshot{}, ErrBusy
	}
	sess := &Session{
		ID:         uuid.New().String(),
		Caller:     caller,
		Callee:     callee,
		Conference: conf,
		state:      Ringing,
		CreatedAt:  time.Now(),
		remote:     make(map[uint64]io.Writer),
		local:      make(map[uint64]io.Writer),
	}
	id := sess.ID
	sess.timer = time.AfterFunc(m.timeout, func() { m.noAnswer(id) })
	m.sessions[id] = sess
	m.byUser[caller] = id
	m.byUser[callee] = id
	snap := sess.snapshot()
	m.mu.Unlock()

	log.Printf("CALL [%s]: %d -> %d ringing", id, caller, callee)
	m.bus.Publish(event.Event{
		Type:           event.CallRequest,
		UserID:         callee,
		PeerID:         caller,
		CallID:         id,
		ConferenceType: conf,
	})
	return snap, nil
}

// Accept 被叫接听：主叫收到 call.accepted，随后双方收到 call.started
func (m *Manager) Accept(callID string, userID uint64) (Snapshot, error) {
	m.mu.Lock()
	sess, err := m.lookupLocked(callID, userID)
	if err != nil {
		m.mu.Unlock()
		return Snapshot{}, err
	}
	if sess.Callee != userID || sess.state != Ringing {
		m.mu.Unlock()
		return Snapshot{}, ErrInvalidState
	}
	sess.timer.Stop()
	sess.state = Accepted
	m.mu.Unlock()

	m.bus.Publish(event.Event{Type: event.CallAccepted, UserID: sess.Caller, PeerID: sess.Callee, CallID: callID})

	// 渲染目标在锁外解析，provider 可能是用户代码
	targets := m.resolveTargets(callID, sess.Caller, sess.Callee)

	m.mu.Lock()
	if sess.state != Accepted {
		// 接听与挂断竞争，挂断已经生效
		snap := sess.snapshot()
		m.mu.Unlock()
		return snap, nil
	}
	sess.state = Active
	sess.startedAt = time.Now()
	for uid, t := range targets.remote {
		sess.remote[uid] = t
	}
	for uid, t := range targets.local {
		sess.local[uid] = t
	}
	snap := sess.snapshot()
	m.mu.Unlock()

	log.Printf("CALL [%s]: started %d <-> %d", callID, sess.Caller, sess.Callee)
	m.bus.Publish(event.Event{Type: event.CallStarted, UserID: sess.Caller, PeerID: sess.Callee, CallID: callID})
	m.bus.Publish(event.Event{Type: event.CallStarted, UserID: sess.Callee, PeerID: sess.Caller, CallID: callID})
	return snap, nil
}

// Reject 被叫拒绝：主叫收到 call.rejected
func (m *Manager) Reject(callID string, userID uint64) (Snapshot, error) {
	m.mu.Lock()
	sess, err := m.lookupLocked(callID, userID)
	if err != nil {
		m.mu.Unlock()
		return Snapshot{}, err
	}
	if sess.Callee != userID || sess.state != Ringing {
		m.mu.Unlock()
		return Snapshot{}, ErrInvalidState
	}
	m.terminateLocked(sess, Rejected, "")
	snap := sess.snapshot()
	m.mu.Unlock()

	log.Printf("CALL [%s]: rejected by %d", callID, userID)
	m.bus.Publish(event.Event{Type: event.CallRejected, UserID: sess.Caller, PeerID: sess.Callee, CallID: callID})
	m.fireEnded(snap)
	return snap, nil
}

// Finish 任意一方挂断，对方收到 call.stopped(manually)。
// 被叫在响铃中挂断等同于拒绝。
func (m *Manager) Finish(callID string, userID uint64) (Snapshot, error) {
	m.mu.Lock()
	sess, err := m.lookupLocked(callID, userID)
	if err != nil {
		m.mu.Unlock()
		return Snapshot{}, err
	}
	if sess.state == Ringing && userID == sess.Callee {
		m.mu.Unlock()
		return m.Reject(callID, userID)
	}
	if sess.state.Terminal() {
		m.mu.Unlock()
		return Snapshot{}, ErrInvalidState
	}
	m.terminateLocked(sess, Ended, cons.CallStopManually)
	snap := sess.snapshot()
	peer, _ := sess.peer(userID)
	m.mu.Unlock()

	log.Printf("CALL [%s]: finished by %d", callID, userID)
	m.bus.Publish(event.Event{Type: event.CallStopped, UserID: peer, PeerID: userID, CallID: callID, Status: cons.CallStopManually})
	m.fireEnded(snap)
	return snap, nil
}

// HangupUser 用户掉线时结束他的通话
func (m *Manager) HangupUser(userID uint64) {
	m.mu.Lock()
	id, ok := m.byUser[userID]
	m.mu.Unlock()
	if !ok {
		return
	}
	if _, err := m.Finish(id, userID); err != nil {
		log.Printf("CALL [%s]: hangup user %d: %v", id, userID, err)
	}
}

// Relay 把一帧数据转发给对方，并写入双方的渲染目标。只在 Active 状态下可用。
func (m *Manager) Relay(callID string, from uint64, data []byte) error {
	m.mu.Lock()
	sess, err := m.lookupLocked(callID, from)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if sess.state != Active {
		m.mu.Unlock()
		return ErrInvalidState
	}
	peer, _ := sess.peer(from)
	remote := sess.remote[peer]
	local := sess.local[from]
	m.mu.Unlock()

	if remote != nil {
		if _, err := remote.Write(data); err != nil {
			log.Printf("CALL [%s]: write remote target of %d: %v", callID, peer, err)
		}
	}
	if local != nil {
		if _, err := local.Write(data); err != nil {
			log.Printf("CALL [%s]: write local target of %d: %v", callID, from, err)
		}
	}
	if m.sig == nil {
		return nil
	}
	return m.sig.Send(peer, Frame{Type: "call.frame", CallID: callID, From: from, Data: data})
}

// Get 查询通话
func (m *Manager) Get(callID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[callID]
	if !ok {
		return Snapshot{}, false
	}
	return sess.snapshot(), true
}

// ActiveCallOf 用户当前的通话
func (m *Manager) ActiveCallOf(userID uint64) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byUser[userID]
	if !ok {
		return Snapshot{}, false
	}
	return m.sessions[id].snapshot(), true
}

// Close 挂断全部通话
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		_, _ = m.Finish(s.ID, s.Caller)
	}
}

func (m *Manager) noAnswer(callID string) {
	m.mu.Lock()
	sess, ok := m.sessions[callID]
	if !ok || sess.state != Ringing {
		m.mu.Unlock()
		return
	}
	m.terminateLocked(sess, Ended, cons.CallStopOpponentDidNotAnswer)
	snap := sess.snapshot()
	m.mu.Unlock()

	log.Printf("CALL [%s]: %d did not answer", callID, sess.Callee)
	m.bus.Publish(event.Event{Type: event.CallNoAnswer, UserID: sess.Caller, PeerID: sess.Callee, CallID: callID})
	m.bus.Publish(event.Event{Type: event.CallStopped, UserID: sess.Callee, PeerID: sess.Caller, CallID: callID, Status: cons.CallStopOpponentDidNotAnswer})
	m.fireEnded(snap)
}

func (m *Manager) lookupLocked(callID string, userID uint64) (*Session, error) {
	sess, ok := m.sessions[callID]
	if !ok {
		return nil, ErrCallNotFound
	}
	if _, ok := sess.peer(userID); !ok {
		return nil, ErrNotParticipant
	}
	return sess, nil
}

// terminateLocked 终态只会进入一次：停止计时器并从索引中移除
func (m *Manager) terminateLocked(sess *Session, st State, reason string) {
	sess.timer.Stop()
	sess.state = st
	sess.reason = reason
	sess.endedAt = time.Now()
	delete(m.sessions, sess.ID)
	if m.byUser[sess.Caller] == sess.ID {
		delete(m.byUser, sess.Caller)
	}
	if m.byUser[sess.Callee] == sess.ID {
		delete(m.byUser, sess.Callee)
	}
}

type resolvedTargets struct {
	remote map[uint64]io.Writer
	local  map[uint64]io.Writer
}

func (m *Manager) resolveTargets(callID string, users ...uint64) resolvedTargets {
	out := resolvedTargets{remote: make(map[uint64]io.Writer), local: make(map[uint64]io.Writer)}
	m.providerMu.RLock()
	providers := make([]TargetProvider, len(m.providers))
	copy(providers, m.providers)
	m.providerMu.RUnlock()

	for _, uid := range users {
		for _, p := range providers {
			if _, ok := out.remote[uid]; !ok {
				if w := p.RemoteTarget(callID, uid); w != nil {
					out.remote[uid] = w
				}
			}
			if _, ok := out.local[uid]; !ok {
				if w := p.LocalTarget(callID, uid); w != nil {
					out.local[uid] = w
				}
			}
		}
	}
	return out
}

func (m *Manager) fireEnded(snap Snapshot) {
	m.endedMu.RLock()
	handlers := make([]func(Snapshot), len(m.ended))
	copy(handlers, m.ended)
	m.endedMu.RUnlock()
	for _, fn := range handlers {
		fn(snap)
	}
}
