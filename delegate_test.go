package chat_hub

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/cydxin/chat-hub/event"
)

func TestDelegate_FiltersByUser(t *testing.T) {
	e := newTestEngine(t, nil)

	got := make(chan uint64, 4)
	e.AddDelegate(&Delegate{
		UserID:           7,
		ChatRoomDidLeave: func(userID uint64, _ string) { got <- userID },
	})

	e.Bus.Publish(event.Event{Type: event.RoomLeft, UserID: 8, RoomName: "a"})
	e.Bus.Publish(event.Event{Type: event.RoomLeft, UserID: 7, RoomName: "b"})

	select {
	case uid := <-got:
		if uid != 7 {
			t.Fatalf("delegate for user 7 received event of user %d", uid)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ChatRoomDidLeave not called")
	}
	select {
	case uid := <-got:
		t.Fatalf("unexpected extra event for user %d", uid)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDelegate_AllUsers(t *testing.T) {
	e := newTestEngine(t, nil)

	got := make(chan uint64, 4)
	e.AddDelegate(&Delegate{
		ChatDidLogin: func(userID uint64) { got <- userID },
	})
	e.Bus.Publish(event.Event{Type: event.ChatLogin, UserID: 1})
	e.Bus.Publish(event.Event{Type: event.ChatLogin, UserID: 2})

	for _, want := range []uint64{1, 2} {
		select {
		case uid := <-got:
			if uid != want {
				t.Fatalf("got user %d, want %d", uid, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("ChatDidLogin not called")
		}
	}
}

func TestDelegate_Remove(t *testing.T) {
	e := newTestEngine(t, nil)

	base := e.Bus.SubscriberCount()
	remove := e.AddDelegate(&Delegate{ChatDidLogin: func(uint64) {}})
	if n := e.Bus.SubscriberCount(); n != base+1 {
		t.Fatalf("subscriber count = %d, want %d", n, base+1)
	}
	remove()
	remove()
	if n := e.Bus.SubscriberCount(); n != base {
		t.Fatalf("subscriber count after remove = %d, want %d", n, base)
	}
}

func TestDelegate_PanicDoesNotStopDispatch(t *testing.T) {
	e := newTestEngine(t, nil)

	got := make(chan string, 2)
	e.AddDelegate(&Delegate{
		ChatRoomDidLeave: func(_ uint64, name string) {
			if name == "boom" {
				panic("hook failed")
			}
			got <- name
		},
	})
	e.Bus.Publish(event.Event{Type: event.RoomLeft, UserID: 1, RoomName: "boom"})
	e.Bus.Publish(event.Event{Type: event.RoomLeft, UserID: 1, RoomName: "ok"})

	select {
	case name := <-got:
		if name != "ok" {
			t.Fatalf("got %q", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch stopped after panic")
	}
}

func TestDelegate_NilHooksIgnored(t *testing.T) {
	d := &Delegate{}
	// 所有回调为空时不应 panic
	for _, typ := range []event.Type{event.ChatLogin, event.ChatMessageReceived, event.RoomEntered, event.CallStarted, event.RoomCreated} {
		d.dispatch(event.Event{Type: typ, UserID: 1})
	}
}

func TestDelegateTargets(t *testing.T) {
	var remote, local bytes.Buffer
	d := &Delegate{
		UserID:            2,
		RemoteVideoTarget: func(string) io.Writer { return &remote },
		LocalVideoTarget:  func(string) io.Writer { return &local },
	}
	tp := &delegateTargets{d: d}

	if w := tp.RemoteTarget("c1", 2); w != &remote {
		t.Fatalf("remote target for own user = %v", w)
	}
	if w := tp.LocalTarget("c1", 2); w != &local {
		t.Fatalf("local target for own user = %v", w)
	}
	if w := tp.RemoteTarget("c1", 3); w != nil {
		t.Fatal("remote target for other user should be nil")
	}

	noLocal := &delegateTargets{d: &Delegate{RemoteVideoTarget: d.RemoteVideoTarget}}
	if w := noLocal.LocalTarget("c1", 9); w != nil {
		t.Fatal("local target without hook should be nil")
	}
}

func TestDelegate_OtherUsersDoNotCrowdOut(t *testing.T) {
	e := newTestEngine(t, &Config{EventBuffer: 4})

	release := make(chan struct{})
	logins := make(chan uint64, 1)
	left := make(chan string, 4)
	e.AddDelegate(&Delegate{
		UserID: 1,
		ChatDidLogin: func(userID uint64) {
			logins <- userID
			<-release
		},
		ChatRoomDidLeave: func(_ uint64, name string) { left <- name },
	})

	e.Bus.Publish(event.Event{Type: event.ChatLogin, UserID: 1})
	select {
	case <-logins:
	case <-time.After(2 * time.Second):
		t.Fatal("ChatDidLogin not called")
	}

	// 回调阻塞期间，别的用户的事件远超缓冲
	for i := 0; i < 20; i++ {
		e.Bus.Publish(event.Event{Type: event.RoomLeft, UserID: 2, RoomName: "other"})
	}
	e.Bus.Publish(event.Event{Type: event.RoomLeft, UserID: 1, RoomName: "mine"})
	close(release)

	select {
	case name := <-left:
		if name != "mine" {
			t.Fatalf("got room %q", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("own event was dropped")
	}
}
