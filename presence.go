package chat_hub

import (
	"context"
	"log"

	"github.com/cydxin/chat-hub/cons"
	"github.com/cydxin/chat-hub/session"
)

// SetPresence 用户主动设置在线状态（available/away），推送给同房间的联系人
func (c *ChatEngine) SetPresence(userID uint64, kind string) error {
	switch kind {
	case cons.PresenceAvailable, cons.PresenceAway, cons.PresenceUnavailable:
	default:
		return ErrBadPresence
	}
	c.broadcastPresence(userID, kind)
	return nil
}

// onUserOnline 第一个 WS 连接建立
func (c *ChatEngine) onUserOnline(userID uint64) {
	// token 有效但状态机里没有记录（例如服务重启），补一次登录
	c.resumeSession(userID)
	contacts := c.broadcastPresence(userID, cons.PresenceAvailable)

	// 把已在线联系人的状态告诉新上线的用户
	for _, peer := range contacts {
		if c.WsServer.Online(peer) {
			c.Sessions.Presence(userID, peer, cons.PresenceAvailable)
		}
	}
}

// onUserOffline 最后一个连接断开（含宽限期）
func (c *ChatEngine) onUserOffline(userID uint64) {
	// 先推 unavailable：离开房间后就找不到只在内存里同房间的联系人了
	c.broadcastPresence(userID, cons.PresenceUnavailable)
	c.leaveAllRooms(userID)
	c.Calls.HangupUser(userID)
	c.limiter.Forget(userID)
	c.Sessions.Close(userID)
}

// onWriteError 已登录用户的连接写失败。用户还有其他可用连接时会话不受影响。
func (c *ChatEngine) onWriteError(userID uint64) {
	if c.WsServer.ConnCount(userID) > 0 {
		return
	}
	if c.Sessions.Get(userID) != session.Authenticated {
		return
	}
	if err := c.Sessions.Fail(userID, session.ErrConnectionClosed); err != nil {
		log.Printf("SESSION: user=%d: %v", userID, err)
	}
}

// onUserActive 连接上有读到数据，续期 Redis 里的在线状态
func (c *ChatEngine) onUserActive(userID uint64) {
	if c.config.RDB == nil {
		return
	}
	if err := c.PresenceService.Touch(context.Background(), userID); err != nil {
		log.Printf("presence touch user=%d: %v", userID, err)
	}
}

// PresenceOf 查询在线状态，只返回自己和联系人（同房间的用户）的，其他 id 忽略
func (c *ChatEngine) PresenceOf(ctx context.Context, userID uint64, ids []uint64) (map[uint64]string, error) {
	allowed := map[uint64]struct{}{userID: {}}
	for _, uid := range c.contactsOf(userID) {
		allowed[uid] = struct{}{}
	}
	visible := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := allowed[id]; ok {
			visible = append(visible, id)
		}
	}
	return c.PresenceService.Batch(ctx, visible)
}

// broadcastPresence 记录状态并推送给联系人，返回联系人列表
func (c *ChatEngine) broadcastPresence(userID uint64, kind string) []uint64 {
	if c.config.RDB != nil {
		if err := c.PresenceService.Set(context.Background(), userID, kind); err != nil {
			log.Printf("presence user=%d: %v", userID, err)
		}
	}
	if c.config.DB != nil && kind != cons.PresenceAway {
		if err := c.UserService.SetOnline(userID, kind == cons.PresenceAvailable); err != nil {
			log.Printf("set online user=%d: %v", userID, err)
		}
	}

	contacts := c.contactsOf(userID)
	for _, peer := range contacts {
		c.Sessions.Presence(peer, userID, kind)
	}
	return contacts
}

// contactsOf 同房间的其他用户：持久化的成员关系 + 当前同在房间里的在线用户
func (c *ChatEngine) contactsOf(userID uint64) []uint64 {
	seen := make(map[uint64]struct{})
	var out []uint64
	add := func(uid uint64) {
		if uid == userID {
			return
		}
		if _, ok := seen[uid]; ok {
			return
		}
		seen[uid] = struct{}{}
		out = append(out, uid)
	}

	if c.config.DB != nil {
		ids, err := c.RoomService.CoMembers(userID)
		if err != nil {
			log.Printf("co-members user=%d: %v", userID, err)
		}
		for _, uid := range ids {
			add(uid)
		}
	}
	for _, name := range c.Rooms.RoomsOf(userID) {
		for _, uid := range c.Rooms.Online(name) {
			add(uid)
		}
	}
	return out
}
