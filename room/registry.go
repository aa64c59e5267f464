// Package room 维护房间的在线成员：房间名 -> 在线用户集合。
// 持久化的房间/成员关系在 service.RoomService，这里只管内存里的“谁在房间里”。
package room

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotRoomMember = errors.New("user is not allowed to join this room")
	ErrNotInRoom     = errors.New("user is not in this room")
)

type Registry struct {
	mu     sync.RWMutex
	online map[string]map[uint64]struct{}
	// userRooms userID -> 已进入的房间
	userRooms map[uint64]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		online:    make(map[string]map[uint64]struct{}),
		userRooms: make(map[uint64]map[string]struct{}),
	}
}

// Enter 进入房间，返回进入后的在线成员以及是否发生变化（重复进入不算变化）
func (r *Registry) Enter(name string, userID uint64) ([]uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.online[name]
	if members == nil {
		members = make(map[uint64]struct{})
		r.online[name] = members
	}
	_, already := members[userID]
	members[userID] = struct{}{}

	rooms := r.userRooms[userID]
	if rooms == nil {
		rooms = make(map[string]struct{})
		r.userRooms[userID] = rooms
	}
	rooms[name] = struct{}{}

	return sortedIDs(members), !already
}

// Leave 离开房间，返回剩余在线成员
func (r *Registry) Leave(name string, userID uint64) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(name, userID)
}

func (r *Registry) leaveLocked(name string, userID uint64) ([]uint64, error) {
	members := r.online[name]
	if _, ok := members[userID]; !ok {
		return nil, ErrNotInRoom
	}
	delete(members, userID)
	remaining := sortedIDs(members)
	if len(members) == 0 {
		delete(r.online, name)
	}

	if rooms := r.userRooms[userID]; rooms != nil {
		delete(rooms, name)
		if len(rooms) == 0 {
			delete(r.userRooms, userID)
		}
	}
	return remaining, nil
}

// LeaveAll 用户下线时离开全部房间，返回 房间名 -> 剩余在线成员
func (r *Registry) LeaveAll(userID uint64) map[string][]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := r.userRooms[userID]
	if len(rooms) == 0 {
		return nil
	}
	names := make([]string, 0, len(rooms))
	for name := range rooms {
		names = append(names, name)
	}
	out := make(map[string][]uint64, len(names))
	for _, name := range names {
		remaining, err := r.leaveLocked(name, userID)
		if err != nil {
			continue
		}
		out[name] = remaining
	}
	return out
}

// Online 房间当前在线成员（升序）
func (r *Registry) Online(name string) []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedIDs(r.online[name])
}

// IsIn 用户是否在房间里
func (r *Registry) IsIn(name string, userID uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.online[name][userID]
	return ok
}

// RoomsOf 用户已进入的房间（升序）
func (r *Registry) RoomsOf(userID uint64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.userRooms[userID]))
	for name := range r.userRooms[userID] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Rooms 有人在线的房间
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.online))
	for name := range r.online {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func sortedIDs(set map[uint64]struct{}) []uint64 {
	out := make([]uint64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
