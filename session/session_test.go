package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cydxin/chat-hub/cons"
	"github.com/cydxin/chat-hub/event"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, s *event.Subscription) event.Event {
	t.Helper()
	select {
	case evt := <-s.C():
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
	return event.Event{}
}

func TestManager_LoginSuccess(t *testing.T) {
	req := require.New(t)
	bus := event.NewBus(8)
	defer bus.Close()
	sub := bus.Subscribe()
	m := NewManager(bus)

	req.Equal(Disconnected, m.Get(7))
	req.NoError(m.Begin(7))
	req.Equal(Connecting, m.Get(7))
	req.NoError(m.Authenticated(7))
	req.Equal(Authenticated, m.Get(7))
	req.Equal([]uint64{7}, m.AuthenticatedUsers())

	evt := next(t, sub)
	req.Equal(event.ChatLogin, evt.Type)
	req.Equal(uint64(7), evt.UserID)
}

func TestManager_LoginFailureThenRetry(t *testing.T) {
	req := require.New(t)
	bus := event.NewBus(8)
	defer bus.Close()
	sub := bus.Subscribe()
	m := NewManager(bus)

	req.NoError(m.Begin(1))
	req.NoError(m.Fail(1, ErrAuthFailed))
	req.Equal(Failed, m.Get(1))

	evt := next(t, sub)
	req.Equal(event.ChatLoginFailed, evt.Type)
	req.Equal(int(ErrAuthFailed), evt.Code)

	// 失败后允许重新登录
	req.NoError(m.Begin(1))
}

func TestManager_ConnectionErrorAfterLogin(t *testing.T) {
	req := require.New(t)
	bus := event.NewBus(8)
	defer bus.Close()
	m := NewManager(bus)
	req.NoError(m.Begin(2))
	req.NoError(m.Authenticated(2))

	sub := bus.Subscribe(event.OfTypes(event.ChatFail))
	req.NoError(m.Fail(2, ErrConnectionClosed))
	req.Equal(Disconnected, m.Get(2))

	evt := next(t, sub)
	req.Equal(int(ErrConnectionClosed), evt.Code)
}

func TestManager_InvalidTransitions(t *testing.T) {
	req := require.New(t)
	bus := event.NewBus(8)
	defer bus.Close()
	m := NewManager(bus)

	req.ErrorIs(m.Authenticated(3), ErrInvalidTransition)
	req.ErrorIs(m.Fail(3, ErrUnknown), ErrInvalidTransition)
	req.NoError(m.Begin(3))
	req.ErrorIs(m.Begin(3), ErrInvalidTransition)

	m.Close(3)
	req.Equal(Disconnected, m.Get(3))
}

func TestManager_BeginOrJoin(t *testing.T) {
	req := require.New(t)
	bus := event.NewBus(8)
	defer bus.Close()
	m := NewManager(bus)

	req.True(m.BeginOrJoin(4))
	req.Equal(Connecting, m.Get(4))
	req.False(m.BeginOrJoin(4))
	req.NoError(m.Authenticated(4))
	req.False(m.BeginOrJoin(4))
	req.Equal(Authenticated, m.Get(4))

	req.True(m.BeginOrJoin(5))
	req.NoError(m.Fail(5, ErrAuthFailed))
	req.True(m.BeginOrJoin(5), "failed login can be retried")
}

func TestManager_BeginOrJoinConcurrent(t *testing.T) {
	bus := event.NewBus(8)
	defer bus.Close()
	m := NewManager(bus)

	for round := uint64(1); round <= 20; round++ {
		var owners atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if m.BeginOrJoin(round) {
					owners.Add(1)
				}
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), owners.Load(), "round %d", round)
	}
}

func TestManager_Presence(t *testing.T) {
	bus := event.NewBus(8)
	defer bus.Close()
	sub := bus.Subscribe(event.OfTypes(event.ChatPresence))
	m := NewManager(bus)

	m.Presence(1, 2, cons.PresenceAway)
	evt := next(t, sub)
	require.Equal(t, uint64(2), evt.PeerID)
	require.Equal(t, cons.PresenceAway, evt.PresenceType)
}

func TestState_String(t *testing.T) {
	require.Equal(t, "authenticated", Authenticated.String())
	require.Equal(t, "state(9)", State(9).String())
}
