package cons

// 会话（登录/连接/在线状态）事件
const (
	EventChatLogin       = "chat.login"        // 登录成功
	EventChatLoginFailed = "chat.login_failed" // 登录失败
	EventChatFail        = "chat.fail"         // 连接异常（带错误码）
	EventChatPresence    = "chat.presence"     // 收到某用户的在线状态
)

// 消息事件
const (
	EventChatMessage        = "chat.message"          // 收到单聊消息
	EventChatMessageNotSent = "chat.message_not_sent" // 消息发送失败
)

// 房间事件
const (
	EventRoomList        = "room.list"         // 可加入的房间列表
	EventRoomMessage     = "room.message"      // 房间收到消息
	EventRoomEntered     = "room.entered"      // 进入房间成功
	EventRoomNotEntered  = "room.not_entered"  // 进入房间失败
	EventRoomLeft        = "room.left"         // 离开房间
	EventRoomOnlineUsers = "room.online_users" // 房间在线用户变化
	EventRoomUsers       = "room.users"        // 可加入该房间的用户列表

	// EventRoomCreated 已弃用：不会再发布，创建房间后统一走 EventRoomEntered。
	EventRoomCreated = "room.created"
)

// 音视频通话事件
const (
	EventCallRequest  = "call.request"   // 对方呼叫我
	EventCallNoAnswer = "call.no_answer" // 我呼叫对方，对方未接听
	EventCallAccepted = "call.accepted"  // 对方接听
	EventCallRejected = "call.rejected"  // 对方拒绝
	EventCallStopped  = "call.stopped"   // 对方挂断（带原因）
	EventCallStarted  = "call.started"   // 通话开始
)

// 通话结束原因
const (
	CallStopOpponentDidNotAnswer = "opponent_did_not_answer"
	CallStopManually             = "manually"
)

// 在线状态类型
const (
	PresenceAvailable   = "available"
	PresenceUnavailable = "unavailable"
	PresenceAway        = "away"
)
