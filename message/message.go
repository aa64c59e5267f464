package message

import "time"

// Req 上行：发消息（单聊填 send_to，房间消息填 room）
type Req struct {
	Type        string `json:"type"`         // WS 消息类型：message/room.message
	SendTo      uint64 `json:"send_to"`      // 接收者用户 ID
	Room        string `json:"room"`         // 房间名
	SendType    uint8  `json:"send_type"`    // 消息类型 1-文本 2-图片 3-语音 4-视频 5-文件 6-位置 7-引用
	SendContent string `json:"send_content"` // 消息内容
	Extra       *Extra `json:"extra"`        // 消息扩展
	PacketID    string `json:"packet_id"`    // 包ID
}

type Extra struct {
	MessageID      uint64        `json:"message_id,omitempty"`      // 被引用的消息 ID
	MessageContent string        `json:"message_content,omitempty"` // 被引用的消息内容
	MentionedUsers []uint64      `json:"mentioned_users,omitempty"` // 被@的用户列表
	Location       *LocationInfo `json:"location,omitempty"`        // 位置信息
	FileInfo       *FileInfo     `json:"file_info,omitempty"`       // 文件信息
}

type LocationInfo struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Address   string  `json:"address"`
}

type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
	Ext  string `json:"ext"`
}

// RoomReq 上行：room.list/room.enter/room.leave/room.users
type RoomReq struct {
	Type     string `json:"type"`
	Room     string `json:"room"`
	PacketID string `json:"packet_id"`
}

// PresenceReq 上行：设置自己的在线状态
type PresenceReq struct {
	Type     string `json:"type"`
	Presence string `json:"presence"` // available/away
	PacketID string `json:"packet_id"`
}

// CallReq 上行：通话信令
type CallReq struct {
	Type           string `json:"type"`
	CallID         string `json:"call_id"`         // accept/reject/finish/frame
	To             uint64 `json:"to"`              // call.request 的被叫
	ConferenceType uint8  `json:"conference_type"` // 1-音视频
	Data           []byte `json:"data"`            // call.frame 的数据（base64）
	PacketID       string `json:"packet_id"`
}

// Ack 下行：发送成功回执
type Ack struct {
	Type      string    `json:"type"` // ack
	PacketID  string    `json:"packet_id"`
	ID        uint64    `json:"id,omitempty"`
	CallID    string    `json:"call_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorFrame 下行：上行请求处理失败
type ErrorFrame struct {
	Type     string `json:"type"` // error
	Message  string `json:"message"`
	PacketID string `json:"packet_id,omitempty"`
}
