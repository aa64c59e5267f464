// Package event 定义引擎对外发布的全部事件，以及进程内的发布/订阅总线。
// 每个事件类型对应一个回调钩子（登录、消息、房间、通话），
// 多个订阅者可以互不干扰地同时监听。
package event

import (
	"encoding/json"
	"time"

	"github.com/cydxin/chat-hub/cons"
)

// Type 事件类型
type Type string

const (
	ChatLogin           Type = cons.EventChatLogin
	ChatLoginFailed     Type = cons.EventChatLoginFailed
	ChatFail            Type = cons.EventChatFail
	ChatPresence        Type = cons.EventChatPresence
	ChatMessageReceived Type = cons.EventChatMessage
	ChatMessageNotSent  Type = cons.EventChatMessageNotSent

	RoomList        Type = cons.EventRoomList
	RoomMessage     Type = cons.EventRoomMessage
	RoomEntered     Type = cons.EventRoomEntered
	RoomNotEntered  Type = cons.EventRoomNotEntered
	RoomLeft        Type = cons.EventRoomLeft
	RoomOnlineUsers Type = cons.EventRoomOnlineUsers
	RoomUsers       Type = cons.EventRoomUsers
	// Deprecated: 不会再发布，使用 RoomEntered。
	RoomCreated Type = cons.EventRoomCreated

	CallRequest  Type = cons.EventCallRequest
	CallNoAnswer Type = cons.EventCallNoAnswer
	CallAccepted Type = cons.EventCallAccepted
	CallRejected Type = cons.EventCallRejected
	CallStopped  Type = cons.EventCallStopped
	CallStarted  Type = cons.EventCallStarted
)

// ConferenceType 通话的媒体类型。目前只有音频+视频可用。
type ConferenceType uint8

const (
	ConferenceAudioAndVideo ConferenceType = 1
)

// ChatMessage 单聊/房间消息。RoomName 为空表示单聊。
type ChatMessage struct {
	ID          uint64          `json:"id"`
	RoomName    string          `json:"room_name,omitempty"`
	SenderID    uint64          `json:"sender_id"`
	RecipientID uint64          `json:"recipient_id,omitempty"`
	Type        uint8           `json:"msg_type"`
	Content     string          `json:"content"`
	Extra       json.RawMessage `json:"extra,omitempty"`
	PacketID    string          `json:"packet_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RoomInfo 房间的展示信息
type RoomInfo struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatorID   uint64 `json:"creator_id"`
}

// Event 一条事件。UserID 是接收该事件的本地用户，其余字段按 Type 取用。
type Event struct {
	Type   Type   `json:"type"`
	UserID uint64 `json:"user_id"`

	// PeerID 对方用户：在线状态来源 / 通话对方
	PeerID uint64 `json:"peer_id,omitempty"`

	RoomName string       `json:"room_name,omitempty"`
	Room     *RoomInfo    `json:"room,omitempty"`
	Rooms    []RoomInfo   `json:"rooms,omitempty"`
	Users    []uint64     `json:"users,omitempty"`
	Message  *ChatMessage `json:"message,omitempty"`

	// Code chat.fail 的错误码
	Code int `json:"code,omitempty"`
	// Err room.not_entered 的失败原因
	Err error `json:"-"`

	// Status 通话结束原因
	Status string `json:"status,omitempty"`
	// PresenceType available/unavailable/away
	PresenceType string `json:"presence_type,omitempty"`

	CallID         string         `json:"call_id,omitempty"`
	ConferenceType ConferenceType `json:"conference_type,omitempty"`

	At time.Time `json:"at"`
}

// MarshalJSON 额外带上 error 文本，便于直接推给 WS 客户端。
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	out := struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias: alias(e)}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	return json.Marshal(out)
}
