package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// UserDAO 封装 User 相关的数据库操作
type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

func (dao *UserDAO) Create(user *User) error {
	return dao.db.Create(user).Error
}

func (dao *UserDAO) FindByID(id uint64) (*User, error) {
	var u User
	if err := dao.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (dao *UserDAO) FindByUsername(username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var u User
	if err := dao.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (dao *UserDAO) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := dao.db.Model(&User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ExistsByID 用于发送前校验接收者
func (dao *UserDAO) ExistsByID(id uint64) (bool, error) {
	var count int64
	err := dao.db.Model(&User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// AllIDs 全部用户 ID，公开房间的可进入用户就是它
func (dao *UserDAO) AllIDs() ([]uint64, error) {
	var ids []uint64
	err := dao.db.Model(&User{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

// SetOnline 更新在线状态与活跃时间
func (dao *UserDAO) SetOnline(id uint64, online bool, now time.Time) error {
	status := OnlineStatusOffline
	if online {
		status = OnlineStatusOnline
	}
	return dao.db.Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"online_status":  status,
		"last_active_at": now,
	}).Error
}

// TouchLogin 记录登录时间
func (dao *UserDAO) TouchLogin(id uint64, now time.Time) error {
	return dao.db.Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"last_login_at":  now,
		"last_active_at": now,
	}).Error
}

func (dao *UserDAO) IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
