package event

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, s *Subscription) Event {
	t.Helper()
	select {
	case evt, ok := <-s.C():
		require.True(t, ok, "subscription closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestBus_MultipleSubscribersReceiveInOrder(t *testing.T) {
	req := require.New(t)
	bus := NewBus(8)
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()
	req.Equal(2, bus.SubscriberCount())

	bus.Publish(Event{Type: ChatLogin, UserID: 1})
	bus.Publish(Event{Type: ChatPresence, UserID: 1, PeerID: 2})

	for _, s := range []*Subscription{a, b} {
		first := recv(t, s)
		second := recv(t, s)
		req.Equal(ChatLogin, first.Type)
		req.Equal(ChatPresence, second.Type)
		req.False(first.At.IsZero())
	}
}

func TestBus_Filter(t *testing.T) {
	req := require.New(t)
	bus := NewBus(8)
	defer bus.Close()

	calls := bus.Subscribe(OfTypes(CallRequest, CallStopped))
	bus.Publish(Event{Type: ChatMessageReceived, UserID: 1})
	bus.Publish(Event{Type: CallStopped, UserID: 1, Status: "manually"})

	evt := recv(t, calls)
	req.Equal(CallStopped, evt.Type)
	req.Equal("manually", evt.Status)
	req.Len(calls.C(), 0)
}

func TestBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	req := require.New(t)
	bus := NewBus(1)
	defer bus.Close()

	slow := bus.Subscribe()
	fast := bus.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			bus.Publish(Event{Type: ChatMessageReceived, UserID: uint64(i)})
			<-fast.C()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("publisher blocked by slow subscriber")
	}
	req.Equal(uint64(2), slow.Dropped())
	req.Equal(uint64(0), recv(t, slow).UserID)
}

func TestSubscription_CloseTwice(t *testing.T) {
	req := require.New(t)
	bus := NewBus(4)
	s := bus.Subscribe()
	s.Close()
	s.Close()
	req.Equal(0, bus.SubscriberCount())

	_, ok := <-s.C()
	req.False(ok)

	// 关闭后的订阅不再收到事件
	bus.Publish(Event{Type: ChatLogin})
	bus.Close()
	bus.Close()
}

func TestBus_SubscribeAfterClose(t *testing.T) {
	bus := NewBus(4)
	bus.Close()
	s := bus.Subscribe()
	_, ok := <-s.C()
	require.False(t, ok)
	bus.Publish(Event{Type: ChatLogin})
	s.Close()
}

func TestEvent_MarshalJSONIncludesError(t *testing.T) {
	req := require.New(t)
	evt := Event{Type: RoomNotEntered, UserID: 3, RoomName: "lobby", Err: errors.New("room not found")}
	b, err := json.Marshal(evt)
	req.NoError(err)

	var out map[string]any
	req.NoError(json.Unmarshal(b, &out))
	req.Equal("room.not_entered", out["type"])
	req.Equal("lobby", out["room_name"])
	req.Equal("room not found", out["error"])
}

func TestBus_ForUserSkipsOtherUsers(t *testing.T) {
	req := require.New(t)
	bus := NewBus(2)
	defer bus.Close()

	mine := bus.Subscribe(ForUser(1))
	for i := 0; i < 20; i++ {
		bus.Publish(Event{Type: RoomLeft, UserID: 2, RoomName: "other"})
	}
	bus.Publish(Event{Type: RoomLeft, UserID: 1, RoomName: "a"})
	bus.Publish(Event{Type: RoomLeft, UserID: 1, RoomName: "b"})

	req.Equal("a", recv(t, mine).RoomName)
	req.Equal("b", recv(t, mine).RoomName)
	req.Equal(uint64(0), mine.Dropped())
}

func TestBus_ForUserWithTypes(t *testing.T) {
	req := require.New(t)
	bus := NewBus(4)
	defer bus.Close()

	s := bus.Subscribe(ForUser(3), OfTypes(CallRequest))
	bus.Publish(Event{Type: ChatLogin, UserID: 3})
	bus.Publish(Event{Type: CallRequest, UserID: 4})
	bus.Publish(Event{Type: CallRequest, UserID: 3, CallID: "c1"})

	req.Equal("c1", recv(t, s).CallID)
	req.Len(s.C(), 0)
}

func TestBus_UnboundedNeverDrops(t *testing.T) {
	req := require.New(t)
	bus := NewBus(1)
	defer bus.Close()

	s := bus.Subscribe(Unbounded())
	const n = 2000
	for i := 0; i < n; i++ {
		bus.Publish(Event{Type: ChatPresence, UserID: 1, PeerID: uint64(i)})
	}
	for i := 0; i < n; i++ {
		req.Equal(uint64(i), recv(t, s).PeerID)
	}
	req.Equal(uint64(0), s.Dropped())
	req.Equal(0, s.Pending())
}

func TestBus_UnboundedClose(t *testing.T) {
	req := require.New(t)
	bus := NewBus(1)

	s := bus.Subscribe(Unbounded())
	bus.Publish(Event{Type: ChatLogin, UserID: 1})
	bus.Publish(Event{Type: ChatLogin, UserID: 2})
	s.Close()
	s.Close()
	req.Equal(0, bus.SubscriberCount())

	// 关闭后通道最终会被关掉，未读的事件丢弃
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-s.C():
			if !ok {
				bus.Close()
				return
			}
		case <-deadline:
			t.Fatal("unbounded subscription channel not closed")
		}
	}
}
