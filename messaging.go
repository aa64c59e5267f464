package chat_hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/cydxin/chat-hub/event"
	"github.com/cydxin/chat-hub/models"
	"github.com/cydxin/chat-hub/room"
	"github.com/cydxin/chat-hub/service"
)

func toChatMessage(m *models.Message, roomName string) *event.ChatMessage {
	out := &event.ChatMessage{
		ID:          m.ID,
		RoomName:    roomName,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Type:        m.Type,
		Content:     m.Content,
		PacketID:    m.PacketID,
		CreatedAt:   m.CreatedAt,
	}
	if len(m.Extra) > 0 {
		out.Extra = json.RawMessage(m.Extra)
	}
	return out
}

// SendMessage 单聊发消息：限流 -> 校验接收者 -> 落库 -> 发布 chat.message 给接收者。
// 任何一步失败都给发送者发布 chat.message_not_sent（带原消息）并推一个 WS error 帧。
func (c *ChatEngine) SendMessage(ctx context.Context, from, to uint64, content string, msgType uint8, extra json.RawMessage, packetID string) (*event.ChatMessage, error) {
	draft := &event.ChatMessage{
		SenderID:    from,
		RecipientID: to,
		Type:        msgType,
		Content:     content,
		Extra:       extra,
		PacketID:    packetID,
		CreatedAt:   time.Now(),
	}
	msg, err := c.sendPrivate(ctx, draft)
	if err != nil {
		c.messageNotSent(draft, err)
		return nil, err
	}
	return msg, nil
}

func (c *ChatEngine) sendPrivate(ctx context.Context, draft *event.ChatMessage) (*event.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if draft.SenderID == draft.RecipientID {
		return nil, ErrSelfMessage
	}
	if !c.limiter.Allow(draft.SenderID) {
		return nil, ErrRateLimited
	}
	ok, err := c.UserService.Exists(draft.RecipientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRecipientNotFound
	}

	saved, err := c.MsgService.SaveMessage(service.SaveMessageReq{
		SenderID:    draft.SenderID,
		RecipientID: draft.RecipientID,
		Type:        draft.Type,
		Content:     draft.Content,
		Extra:       draft.Extra,
		PacketID:    draft.PacketID,
	})
	if err != nil {
		return nil, err
	}
	msg := toChatMessage(saved, "")

	c.Bus.Publish(event.Event{Type: event.ChatMessageReceived, UserID: msg.RecipientID, PeerID: msg.SenderID, Message: msg})
	if c.WsServer.Online(msg.RecipientID) {
		if err := c.MsgService.MarkDelivered(msg.ID); err != nil {
			log.Printf("mark delivered msg=%d: %v", msg.ID, err)
		}
	}
	sendWsAck(c.WsServer, msg)
	return msg, nil
}

// SendRoomMessage 房间消息：发送者必须已进入房间；落库后发布 room.message 给所有在线成员（包括发送者）。
func (c *ChatEngine) SendRoomMessage(ctx context.Context, from uint64, roomName, content string, msgType uint8, extra json.RawMessage, packetID string) (*event.ChatMessage, error) {
	draft := &event.ChatMessage{
		RoomName:  roomName,
		SenderID:  from,
		Type:      msgType,
		Content:   content,
		Extra:     extra,
		PacketID:  packetID,
		CreatedAt: time.Now(),
	}
	msg, err := c.sendRoom(ctx, draft)
	if err != nil {
		c.messageNotSent(draft, err)
		return nil, err
	}
	return msg, nil
}

func (c *ChatEngine) sendRoom(ctx context.Context, draft *event.ChatMessage) (*event.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.Rooms.IsIn(draft.RoomName, draft.SenderID) {
		return nil, room.ErrNotInRoom
	}
	if !c.limiter.Allow(draft.SenderID) {
		return nil, ErrRateLimited
	}
	r, err := c.RoomService.GetRoomByName(draft.RoomName)
	if err != nil {
		return nil, err
	}
	saved, err := c.MsgService.SaveMessage(service.SaveMessageReq{
		RoomID:   r.ID,
		SenderID: draft.SenderID,
		Type:     draft.Type,
		Content:  draft.Content,
		Extra:    draft.Extra,
		PacketID: draft.PacketID,
	})
	if err != nil {
		return nil, err
	}
	msg := toChatMessage(saved, r.Name)

	for _, uid := range c.Rooms.Online(r.Name) {
		c.Bus.Publish(event.Event{Type: event.RoomMessage, UserID: uid, PeerID: msg.SenderID, RoomName: r.Name, Message: msg})
	}
	return msg, nil
}

func (c *ChatEngine) messageNotSent(draft *event.ChatMessage, err error) {
	log.Printf("message not sent from=%d to=%d room=%q: %v", draft.SenderID, draft.RecipientID, draft.RoomName, err)
	c.Bus.Publish(event.Event{
		Type:     event.ChatMessageNotSent,
		UserID:   draft.SenderID,
		PeerID:   draft.RecipientID,
		RoomName: draft.RoomName,
		Message:  draft,
		Err:      err,
	})
	sendWsError(c.WsServer, draft.SenderID, err.Error(), draft.PacketID)
}

// GetPrivateMessages 两人之间的历史消息
func (c *ChatEngine) GetPrivateMessages(userA, userB uint64, limit int, beforeID uint64) ([]service.MessageDTO, error) {
	return c.MsgService.GetPrivateMessages(userA, userB, limit, beforeID)
}

// GetRoomMessages 房间历史消息，userID 必须可以进入该房间
func (c *ChatEngine) GetRoomMessages(userID uint64, roomName string, limit int, beforeID uint64) ([]service.MessageDTO, error) {
	r, err := c.RoomService.CanEnter(roomName, userID)
	if err != nil {
		return nil, fmt.Errorf("room %q: %w", roomName, err)
	}
	return c.MsgService.GetRoomMessages(r.ID, limit, beforeID)
}
