package chat_hub

import (
	"log"

	"github.com/cydxin/chat-hub/event"
	"github.com/cydxin/chat-hub/service"
)

func toRoomInfo(r service.RoomDTO) event.RoomInfo {
	return event.RoomInfo{ID: r.ID, Name: r.Name, Description: r.Description, CreatorID: r.CreatorID}
}

// CreateRoom 创建房间。不会发布 room.created，创建者需要 EnterRoom 才算进入。
func (c *ChatEngine) CreateRoom(creator uint64, req service.CreateRoomReq) (*service.RoomDTO, error) {
	return c.RoomService.CreateRoom(creator, req)
}

// RequestRoomList 发布 room.list：用户可以进入的房间
func (c *ChatEngine) RequestRoomList(userID uint64) ([]event.RoomInfo, error) {
	rooms, err := c.RoomService.ListRooms(userID)
	if err != nil {
		return nil, err
	}
	infos := make([]event.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, toRoomInfo(r))
	}
	c.Bus.Publish(event.Event{Type: event.RoomList, UserID: userID, Rooms: infos})
	return infos, nil
}

// EnterRoom 进入房间。
// 成功：room.entered 给自己，room.online_users 给所有在线成员；失败：room.not_entered（房间名 + 错误）。
func (c *ChatEngine) EnterRoom(userID uint64, name string) error {
	r, err := c.RoomService.CanEnter(name, userID)
	if err != nil {
		log.Printf("ROOM [%s]: user %d not entered: %v", name, userID, err)
		c.Bus.Publish(event.Event{Type: event.RoomNotEntered, UserID: userID, RoomName: name, Err: err})
		return err
	}

	online, changed := c.Rooms.Enter(r.Name, userID)
	info := event.RoomInfo{ID: r.ID, Name: r.Name, Description: r.Description, CreatorID: r.CreatorID}
	c.Bus.Publish(event.Event{Type: event.RoomEntered, UserID: userID, RoomName: r.Name, Room: &info})
	if changed {
		c.publishOnlineUsers(r.Name, online)
	} else {
		c.Bus.Publish(event.Event{Type: event.RoomOnlineUsers, UserID: userID, RoomName: r.Name, Users: online})
	}
	return nil
}

// LeaveRoom 离开房间：room.left 给自己，room.online_users 给剩余在线成员
func (c *ChatEngine) LeaveRoom(userID uint64, name string) error {
	remaining, err := c.Rooms.Leave(name, userID)
	if err != nil {
		return err
	}
	c.Bus.Publish(event.Event{Type: event.RoomLeft, UserID: userID, RoomName: name})
	c.publishOnlineUsers(name, remaining)
	return nil
}

// RequestRoomUsers 发布 room.users：可以进入该房间的全部用户
func (c *ChatEngine) RequestRoomUsers(userID uint64, name string) ([]uint64, error) {
	if _, err := c.RoomService.CanEnter(name, userID); err != nil {
		return nil, err
	}
	users, err := c.RoomService.JoinableUsers(name)
	if err != nil {
		return nil, err
	}
	c.Bus.Publish(event.Event{Type: event.RoomUsers, UserID: userID, RoomName: name, Users: users})
	return users, nil
}

// OnlineRoomUsers 当前在房间里的用户
func (c *ChatEngine) OnlineRoomUsers(name string) []uint64 {
	return c.Rooms.Online(name)
}

func (c *ChatEngine) publishOnlineUsers(name string, online []uint64) {
	for _, uid := range online {
		c.Bus.Publish(event.Event{Type: event.RoomOnlineUsers, UserID: uid, RoomName: name, Users: online})
	}
}

// leaveAllRooms 掉线时离开所有房间
func (c *ChatEngine) leaveAllRooms(userID uint64) {
	for name, remaining := range c.Rooms.LeaveAll(userID) {
		c.publishOnlineUsers(name, remaining)
	}
}

// AddRoomMembers 房主/管理员拉人，之后这些用户可以进入房间
func (c *ChatEngine) AddRoomMembers(name string, operator uint64, userIDs []uint64) error {
	return c.RoomService.AddMembers(name, operator, userIDs)
}

// RemoveRoomMember 移除成员（或自己退出）；如果他正在房间里，同时把他移出房间
func (c *ChatEngine) RemoveRoomMember(name string, operator, userID uint64) error {
	if err := c.RoomService.RemoveMember(name, operator, userID); err != nil {
		return err
	}
	if c.Rooms.IsIn(name, userID) {
		return c.LeaveRoom(userID, name)
	}
	return nil
}
