package repository

import (
	"time"

	"github.com/cydxin/chat-hub/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomMemberDAO 封装 RoomUser 相关的数据库操作
//
// 约定：
// - 只做“数据访问”，不做权限判断和通知。
// - 事务边界由 service 控制；在事务中执行时使用 WithDB(tx)。
type RoomMemberDAO struct {
	db *gorm.DB
}

func NewRoomMemberDAO(db *gorm.DB) *RoomMemberDAO {
	return &RoomMemberDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *RoomMemberDAO) WithDB(db *gorm.DB) *RoomMemberDAO {
	if db == nil {
		return dao
	}
	return &RoomMemberDAO{db: db}
}

// AddMembers 批量加入成员，已存在的忽略
func (dao *RoomMemberDAO) AddMembers(roomID uint64, userIDs []uint64, role uint8) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]models.RoomUser, 0, len(userIDs))
	for _, uid := range userIDs {
		rows = append(rows, models.RoomUser{
			RoomID:    roomID,
			UserID:    uid,
			Role:      role,
			JoinTime:  now,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return dao.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// RemoveMember 删除成员，返回是否真的删除了
func (dao *RoomMemberDAO) RemoveMember(roomID, userID uint64) (bool, error) {
	res := dao.db.Where("room_id = ? AND user_id = ?", roomID, userID).Delete(&models.RoomUser{})
	return res.RowsAffected > 0, res.Error
}

// IsMember 用户是否可以进入该房间
func (dao *RoomMemberDAO) IsMember(roomID, userID uint64) (bool, error) {
	var count int64
	err := dao.db.Model(&models.RoomUser{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

// MemberIDs 房间全部成员 ID
func (dao *RoomMemberDAO) MemberIDs(roomID uint64) ([]uint64, error) {
	var ids []uint64
	err := dao.db.Model(&models.RoomUser{}).
		Where("room_id = ?", roomID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// RoomIDsOf 用户加入的所有房间 ID
func (dao *RoomMemberDAO) RoomIDsOf(userID uint64) ([]uint64, error) {
	var ids []uint64
	err := dao.db.Model(&models.RoomUser{}).
		Where("user_id = ?", userID).
		Pluck("room_id", &ids).Error
	return ids, err
}

// CoMemberIDs 与 userID 至少同在一个房间的其他用户
func (dao *RoomMemberDAO) CoMemberIDs(userID uint64) ([]uint64, error) {
	var ids []uint64
	sub := dao.db.Model(&models.RoomUser{}).Select("room_id").Where("user_id = ?", userID)
	err := dao.db.Model(&models.RoomUser{}).
		Distinct("user_id").
		Where("room_id IN (?) AND user_id <> ?", sub, userID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}
