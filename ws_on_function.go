package chat_hub

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/cydxin/chat-hub/event"
	"github.com/cydxin/chat-hub/message"
)

// bindWsHandlersOnMessage 按上行 type 分发 WS 消息。
// 放在包根目录（同 WsServer/engine.go 同级），可以直接访问 Client 类型。
func (c *ChatEngine) bindWsHandlersOnMessage() {
	c.WsServer.SetOnMessage(func(client *Client, msg []byte) {
		if client == nil {
			return
		}
		c.dispatchWs(client.UserID, msg)
	})
}

func (c *ChatEngine) dispatchWs(userID uint64, msg []byte) {
	// 1) 先尝试解析 type
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		log.Printf("Invalid message format: %v", err)
		sendWsError(c.WsServer, userID, "invalid message format", "")
		return
	}

	switch head.Type {
	case message.WsTypeRoomList, message.WsTypeRoomEnter, message.WsTypeRoomLeave, message.WsTypeRoomUsers:
		var req message.RoomReq
		if err := json.Unmarshal(msg, &req); err != nil {
			sendWsError(c.WsServer, userID, err.Error(), "")
			return
		}
		c.onWsRoom(userID, req)

	case message.WsTypePresence:
		var req message.PresenceReq
		if err := json.Unmarshal(msg, &req); err != nil {
			sendWsError(c.WsServer, userID, err.Error(), "")
			return
		}
		if err := c.SetPresence(userID, req.Presence); err != nil {
			sendWsError(c.WsServer, userID, err.Error(), req.PacketID)
		}

	case message.WsTypeCallRequest, message.WsTypeCallAccept, message.WsTypeCallReject, message.WsTypeCallFinish, message.WsTypeCallFrame:
		var req message.CallReq
		if err := json.Unmarshal(msg, &req); err != nil {
			sendWsError(c.WsServer, userID, err.Error(), "")
			return
		}
		c.onWsCall(userID, req)

	default:
		// 发送消息（type 为空也按单聊处理）
		var req message.Req
		if err := json.Unmarshal(msg, &req); err != nil {
			sendWsError(c.WsServer, userID, err.Error(), "")
			return
		}
		var extra json.RawMessage
		if req.Extra != nil {
			extra, _ = json.Marshal(req.Extra)
		}
		ctx := context.Background()
		// 失败时 SendMessage/SendRoomMessage 自己会推 error 帧
		if head.Type == message.WsTypeRoomMessage {
			_, _ = c.SendRoomMessage(ctx, userID, req.Room, req.SendContent, req.SendType, extra, req.PacketID)
			return
		}
		_, _ = c.SendMessage(ctx, userID, req.SendTo, req.SendContent, req.SendType, extra, req.PacketID)
	}
}

func (c *ChatEngine) onWsRoom(userID uint64, req message.RoomReq) {
	var err error
	switch req.Type {
	case message.WsTypeRoomList:
		_, err = c.RequestRoomList(userID)
	case message.WsTypeRoomEnter:
		// 失败已经通过 room.not_entered 推送
		_ = c.EnterRoom(userID, req.Room)
	case message.WsTypeRoomLeave:
		err = c.LeaveRoom(userID, req.Room)
	case message.WsTypeRoomUsers:
		_, err = c.RequestRoomUsers(userID, req.Room)
	}
	if err != nil {
		sendWsError(c.WsServer, userID, err.Error(), req.PacketID)
	}
}

func (c *ChatEngine) onWsCall(userID uint64, req message.CallReq) {
	var err error
	var callID string
	switch req.Type {
	case message.WsTypeCallRequest:
		conf := event.ConferenceType(req.ConferenceType)
		if conf == 0 {
			conf = event.ConferenceAudioAndVideo
		}
		snap, rerr := c.RequestCall(context.Background(), userID, req.To, conf)
		err, callID = rerr, snap.ID
	case message.WsTypeCallAccept:
		_, err = c.AcceptCall(req.CallID, userID)
	case message.WsTypeCallReject:
		_, err = c.RejectCall(req.CallID, userID)
	case message.WsTypeCallFinish:
		_, err = c.FinishCall(req.CallID, userID)
	case message.WsTypeCallFrame:
		err = c.RelayCallFrame(req.CallID, userID, req.Data)
	}
	if err != nil {
		sendWsError(c.WsServer, userID, err.Error(), req.PacketID)
		return
	}
	// 呼叫要把 call_id 回给主叫，后续信令都带它
	if callID != "" {
		b, _ := json.Marshal(message.Ack{Type: message.WsTypeAck, PacketID: req.PacketID, CallID: callID, CreatedAt: time.Now()})
		c.WsServer.SendToUser(userID, b)
	}
}

func sendWsError(hub *WsServer, userID uint64, msg string, packetID string) {
	if hub == nil {
		return
	}
	b, _ := json.Marshal(message.ErrorFrame{Type: message.WsTypeError, Message: msg, PacketID: packetID})
	hub.SendToUser(userID, b)
}

// sendWsAck 发送成功后回执给发送者（所有端）
func sendWsAck(hub *WsServer, msg *event.ChatMessage) {
	if hub == nil || msg == nil {
		return
	}
	b, _ := json.Marshal(message.Ack{Type: message.WsTypeAck, PacketID: msg.PacketID, ID: msg.ID, CreatedAt: msg.CreatedAt})
	hub.SendToUser(msg.SenderID, b)
}
