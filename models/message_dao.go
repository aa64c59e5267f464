package models

import (
	"gorm.io/gorm"
)

// MessageDAO 封装 Message 相关的数据库操作
type MessageDAO struct {
	db *gorm.DB
}

// NewMessageDAO 创建 MessageDAO 实例
func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{db: db}
}

// Create 创建消息
func (dao *MessageDAO) Create(msg *Message) error {
	return dao.db.Create(msg).Error
}

// FindByID 根据ID查找消息
func (dao *MessageDAO) FindByID(id uint64) (*Message, error) {
	var msg Message
	err := dao.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByRoomID 房间消息，beforeID>0 时取更早的消息（游标分页）
func (dao *MessageDAO) FindByRoomID(roomID uint64, limit int, beforeID uint64) ([]Message, error) {
	var messages []Message
	q := dao.db.Where("room_id = ?", roomID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	err := q.Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// FindPrivate 两个用户之间的单聊消息
func (dao *MessageDAO) FindPrivate(userA, userB uint64, limit int, beforeID uint64) ([]Message, error) {
	var messages []Message
	q := dao.db.Where("room_id = 0 AND ((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?))",
		userA, userB, userB, userA)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	err := q.Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// UpdateStatus 更新消息状态
func (dao *MessageDAO) UpdateStatus(id uint64, status int) error {
	return dao.db.Model(&Message{}).Where("id = ?", id).Update("status", status).Error
}
