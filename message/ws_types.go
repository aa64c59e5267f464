package message

// WS 上行消息类型
const (
	WsTypeMessage     = "message"      // 默认：单聊消息
	WsTypeRoomMessage = "room.message" // 房间消息
	WsTypeRoomList    = "room.list"
	WsTypeRoomEnter   = "room.enter"
	WsTypeRoomLeave   = "room.leave"
	WsTypeRoomUsers   = "room.users"
	WsTypePresence    = "presence"
	WsTypeCallRequest = "call.request"
	WsTypeCallAccept  = "call.accept"
	WsTypeCallReject  = "call.reject"
	WsTypeCallFinish  = "call.finish"
	WsTypeCallFrame   = "call.frame"
)

// WS 下行（非事件）帧类型
const (
	WsTypeAck   = "ack"
	WsTypeError = "error"
)
