package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cydxin/chat-hub/models"
	"github.com/cydxin/chat-hub/repository"
	"github.com/cydxin/chat-hub/room"
	"gorm.io/gorm"
)

var (
	ErrRoomExists     = errors.New("房间名已存在")
	ErrRoomPermission = errors.New("没有房间操作权限")
)

type RoomService struct {
	*Service
	memberDao *repository.RoomMemberDAO
	userDao   *models.UserDAO
}

func NewRoomService(s *Service) *RoomService {
	log.Println("NewRoomService")
	return &RoomService{Service: s, memberDao: repository.NewRoomMemberDAO(s.DB), userDao: models.NewUserDAO(s.DB)}
}

type RoomDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   uint64    `json:"creator_id"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateRoomReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []uint64 `json:"members"`
	IsPublic    bool     `json:"is_public"`
}

func toRoomDTO(r *models.Room) RoomDTO {
	return RoomDTO{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatorID:   r.CreatorID,
		IsPublic:    r.IsPublic,
		CreatedAt:   r.CreatedAt,
	}
}

// CreateRoom 创建房间，创建者为房主，members 为可进入的成员
func (s *RoomService) CreateRoom(creator uint64, req CreateRoomReq) (*RoomDTO, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: 房间名为空", ErrBadRequest)
	}

	var count int64
	if err := s.DB.Model(&models.Room{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrRoomExists
	}

	now := time.Now()
	r := &models.Room{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatorID:   creator,
		IsPublic:    req.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	members := make([]uint64, 0, len(req.Members))
	seen := map[uint64]struct{}{creator: {}}
	for _, uid := range req.Members {
		if uid == 0 {
			continue
		}
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		members = append(members, uid)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(r).Error; err != nil {
			return err
		}
		dao := s.memberDao.WithDB(tx)
		if err := dao.AddMembers(r.ID, []uint64{creator}, models.RoleOwner); err != nil {
			return err
		}
		return dao.AddMembers(r.ID, members, models.RoleMember)
	})
	if err != nil {
		return nil, err
	}
	dto := toRoomDTO(r)
	return &dto, nil
}

// GetRoomByName 不存在返回 room.ErrRoomNotFound
func (s *RoomService) GetRoomByName(name string) (*models.Room, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var r models.Room
	err := s.DB.Where("name = ?", strings.TrimSpace(name)).First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, room.ErrRoomNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ListRooms 用户可以进入的房间：自己是成员的 + 公开房间
func (s *RoomService) ListRooms(userID uint64) ([]RoomDTO, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	roomIDs, err := s.memberDao.RoomIDsOf(userID)
	if err != nil {
		return nil, err
	}

	var rooms []models.Room
	q := s.DB.Model(&models.Room{})
	if len(roomIDs) > 0 {
		q = q.Where("id IN ? OR is_public = ?", roomIDs, true)
	} else {
		q = q.Where("is_public = ?", true)
	}
	if err := q.Order("name ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}

	out := make([]RoomDTO, 0, len(rooms))
	for i := range rooms {
		out = append(out, toRoomDTO(&rooms[i]))
	}
	return out, nil
}

// CanEnter 校验用户能否进入房间
func (s *RoomService) CanEnter(name string, userID uint64) (*models.Room, error) {
	r, err := s.GetRoomByName(name)
	if err != nil {
		return nil, err
	}
	if r.IsPublic {
		return r, nil
	}
	ok, err := s.memberDao.IsMember(r.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, room.ErrNotRoomMember
	}
	return r, nil
}

// JoinableUsers 可进入该房间的用户：公开房间是全部注册用户，否则是成员表
func (s *RoomService) JoinableUsers(name string) ([]uint64, error) {
	r, err := s.GetRoomByName(name)
	if err != nil {
		return nil, err
	}
	if r.IsPublic {
		return s.userDao.AllIDs()
	}
	return s.memberDao.MemberIDs(r.ID)
}

// AddMembers 房主/管理员拉人
func (s *RoomService) AddMembers(name string, operator uint64, userIDs []uint64) error {
	r, err := s.GetRoomByName(name)
	if err != nil {
		return err
	}
	if err := s.requireManager(r.ID, operator); err != nil {
		return err
	}
	return s.memberDao.AddMembers(r.ID, userIDs, models.RoleMember)
}

// RemoveMember 自己退出或房主/管理员移除成员；房主不能被移除
func (s *RoomService) RemoveMember(name string, operator, userID uint64) error {
	r, err := s.GetRoomByName(name)
	if err != nil {
		return err
	}
	if userID == r.CreatorID {
		return ErrRoomPermission
	}
	if operator != userID {
		if err := s.requireManager(r.ID, operator); err != nil {
			return err
		}
	}
	removed, err := s.memberDao.RemoveMember(r.ID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return room.ErrNotRoomMember
	}
	return nil
}

// CoMembers 与用户同房间的其他用户，用于推送在线状态
func (s *RoomService) CoMembers(userID uint64) ([]uint64, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	return s.memberDao.CoMemberIDs(userID)
}

func (s *RoomService) requireManager(roomID, userID uint64) error {
	var ru models.RoomUser
	err := s.DB.Where("room_id = ? AND user_id = ?", roomID, userID).First(&ru).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomPermission
		}
		return err
	}
	if ru.Role != models.RoleOwner && ru.Role != models.RoleAdmin {
		return ErrRoomPermission
	}
	return nil
}
