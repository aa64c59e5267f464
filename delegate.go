package chat_hub

import (
	"io"
	"log"
	"sync"

	"github.com/cydxin/chat-hub/event"
)

// Delegate 回调形式的事件观察者。所有字段都是可选的，nil 的回调直接跳过。
// 可以同时注册多个 Delegate，每个 Delegate 在自己的 goroutine 里按发布顺序收到事件。
//
// UserID 非 0 时只接收发给该用户的事件（客户端视角）；为 0 时接收所有用户的事件（服务端视角）。
type Delegate struct {
	UserID uint64

	// 会话
	ChatDidLogin           func(userID uint64)
	ChatDidNotLogin        func(userID uint64, code int)
	ChatDidFailWithError   func(userID uint64, code int)
	ChatDidReceivePresence func(userID, peerID uint64, presenceType string)

	// 消息
	ChatDidReceiveMessage func(userID uint64, msg *event.ChatMessage)
	ChatDidNotSendMessage func(userID uint64, msg *event.ChatMessage, err error)

	// 房间
	ChatDidReceiveListOfRooms     func(userID uint64, rooms []event.RoomInfo)
	ChatRoomDidReceiveMessage     func(userID uint64, roomName string, msg *event.ChatMessage)
	ChatRoomDidEnter              func(userID uint64, room *event.RoomInfo)
	ChatRoomDidNotEnter           func(userID uint64, roomName string, err error)
	ChatRoomDidLeave              func(userID uint64, roomName string)
	ChatRoomDidChangeOnlineUsers  func(userID uint64, roomName string, users []uint64)
	ChatRoomDidReceiveListOfUsers func(userID uint64, roomName string, users []uint64)

	// Deprecated: 从不调用，使用 ChatRoomDidEnter。
	ChatRoomDidCreate func(userID uint64, roomName string)

	// 通话
	ChatDidReceiveCallRequest func(userID, fromUserID uint64, callID string, conferenceType event.ConferenceType)
	ChatCallUserDidNotAnswer  func(userID, peerID uint64, callID string)
	ChatCallDidAccept         func(userID, peerID uint64, callID string)
	ChatCallDidReject         func(userID, peerID uint64, callID string)
	ChatCallDidStop           func(userID, peerID uint64, callID, status string)
	ChatCallDidStart          func(userID, peerID uint64, callID string)

	// 通话接通时取渲染目标：对方的视频流 / 自己的视频流
	RemoteVideoTarget func(callID string) io.Writer
	LocalVideoTarget  func(callID string) io.Writer
}

// AddDelegate 注册观察者，返回的 remove 用于注销（可重复调用）。
func (c *ChatEngine) AddDelegate(d *Delegate) (remove func()) {
	// 按用户过滤放在总线里，别人的事件不会占这个 Delegate 的缓冲
	sub := c.Bus.Subscribe(event.ForUser(d.UserID))

	var removeTargets func()
	if d.RemoteVideoTarget != nil || d.LocalVideoTarget != nil {
		removeTargets = c.Calls.AddTargetProvider(&delegateTargets{d: d})
	}

	go func() {
		for evt := range sub.C() {
			d.dispatch(evt)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.Close()
			if removeTargets != nil {
				removeTargets()
			}
		})
	}
}

func (d *Delegate) dispatch(evt event.Event) {
	if d.UserID != 0 && evt.UserID != d.UserID {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("delegate panic on %s: %v", evt.Type, r)
		}
	}()

	switch evt.Type {
	case event.ChatLogin:
		if d.ChatDidLogin != nil {
			d.ChatDidLogin(evt.UserID)
		}
	case event.ChatLoginFailed:
		if d.ChatDidNotLogin != nil {
			d.ChatDidNotLogin(evt.UserID, evt.Code)
		}
	case event.ChatFail:
		if d.ChatDidFailWithError != nil {
			d.ChatDidFailWithError(evt.UserID, evt.Code)
		}
	case event.ChatPresence:
		if d.ChatDidReceivePresence != nil {
			d.ChatDidReceivePresence(evt.UserID, evt.PeerID, evt.PresenceType)
		}
	case event.ChatMessageReceived:
		if d.ChatDidReceiveMessage != nil {
			d.ChatDidReceiveMessage(evt.UserID, evt.Message)
		}
	case event.ChatMessageNotSent:
		if d.ChatDidNotSendMessage != nil {
			d.ChatDidNotSendMessage(evt.UserID, evt.Message, evt.Err)
		}
	case event.RoomList:
		if d.ChatDidReceiveListOfRooms != nil {
			d.ChatDidReceiveListOfRooms(evt.UserID, evt.Rooms)
		}
	case event.RoomMessage:
		if d.ChatRoomDidReceiveMessage != nil {
			d.ChatRoomDidReceiveMessage(evt.UserID, evt.RoomName, evt.Message)
		}
	case event.RoomEntered:
		if d.ChatRoomDidEnter != nil {
			d.ChatRoomDidEnter(evt.UserID, evt.Room)
		}
	case event.RoomNotEntered:
		if d.ChatRoomDidNotEnter != nil {
			d.ChatRoomDidNotEnter(evt.UserID, evt.RoomName, evt.Err)
		}
	case event.RoomLeft:
		if d.ChatRoomDidLeave != nil {
			d.ChatRoomDidLeave(evt.UserID, evt.RoomName)
		}
	case event.RoomOnlineUsers:
		if d.ChatRoomDidChangeOnlineUsers != nil {
			d.ChatRoomDidChangeOnlineUsers(evt.UserID, evt.RoomName, evt.Users)
		}
	case event.RoomUsers:
		if d.ChatRoomDidReceiveListOfUsers != nil {
			d.ChatRoomDidReceiveListOfUsers(evt.UserID, evt.RoomName, evt.Users)
		}
	case event.CallRequest:
		if d.ChatDidReceiveCallRequest != nil {
			d.ChatDidReceiveCallRequest(evt.UserID, evt.PeerID, evt.CallID, evt.ConferenceType)
		}
	case event.CallNoAnswer:
		if d.ChatCallUserDidNotAnswer != nil {
			d.ChatCallUserDidNotAnswer(evt.UserID, evt.PeerID, evt.CallID)
		}
	case event.CallAccepted:
		if d.ChatCallDidAccept != nil {
			d.ChatCallDidAccept(evt.UserID, evt.PeerID, evt.CallID)
		}
	case event.CallRejected:
		if d.ChatCallDidReject != nil {
			d.ChatCallDidReject(evt.UserID, evt.PeerID, evt.CallID)
		}
	case event.CallStopped:
		if d.ChatCallDidStop != nil {
			d.ChatCallDidStop(evt.UserID, evt.PeerID, evt.CallID, evt.Status)
		}
	case event.CallStarted:
		if d.ChatCallDidStart != nil {
			d.ChatCallDidStart(evt.UserID, evt.PeerID, evt.CallID)
		}
	}
}

// delegateTargets 把 Delegate 的渲染回调适配成 call.TargetProvider
type delegateTargets struct {
	d *Delegate
}

func (t *delegateTargets) RemoteTarget(callID string, userID uint64) io.Writer {
	if t.d.RemoteVideoTarget == nil || (t.d.UserID != 0 && t.d.UserID != userID) {
		return nil
	}
	return t.d.RemoteVideoTarget(callID)
}

func (t *delegateTargets) LocalTarget(callID string, userID uint64) io.Writer {
	if t.d.LocalVideoTarget == nil || (t.d.UserID != 0 && t.d.UserID != userID) {
		return nil
	}
	return t.d.LocalVideoTarget(callID)
}
