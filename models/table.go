package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultTablePrefix 默认表名前缀
const DefaultTablePrefix = "im_"

var prefix = DefaultTablePrefix

// SetTablePrefix 修改所有表名的前缀，需在第一次访问数据库前调用。
// gorm 会缓存解析过的表名，已经用过的 *gorm.DB 不会感知到修改。
func SetTablePrefix(p string) {
	prefix = p
}

// TablePrefix 当前表名前缀
func TablePrefix() string {
	return prefix
}

// User 用户表
type User struct {
	ID           uint64     `gorm:"primarykey"`
	UID          string     `gorm:"size:36;uniqueIndex;not null"` // 对外用户 ID
	Username     string     `gorm:"size:50;uniqueIndex;not null"` // 登录名
	Nickname     string     `gorm:"size:100;not null"`            // 昵称
	Password     string     `gorm:"size:255;not null"`            // bcrypt 密码
	Avatar       string     `gorm:"size:500"`                     // 头像
	OnlineStatus uint8      `gorm:"type:tinyint;default:0"`       // 在线状态: 0-离线 1-在线
	LastLoginAt  *time.Time // 最后登录时间
	LastActiveAt *time.Time // 最后活跃时间
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Rooms []RoomUser `gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return prefix + "user"
}

// 在线状态
const (
	OnlineStatusOffline = 0
	OnlineStatusOnline  = 1
)

// Room 多人聊天房间，按名称识别（客户端用房间名进入/离开）
type Room struct {
	ID          uint64 `gorm:"primarykey"`
	Name        string `gorm:"size:100;uniqueIndex;not null"` // 房间名
	Description string `gorm:"size:500"`                      // 描述
	CreatorID   uint64 `gorm:"index"`                         // 创建者 ID
	IsPublic    bool   `gorm:"default:false"`                 // 公开房间：任何登录用户都可进入
	MemberLimit int    `gorm:"default:200"`                   // 成员上限

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Creator   User       `gorm:"foreignKey:CreatorID"`
	RoomUsers []RoomUser `gorm:"foreignKey:RoomID;references:ID"`
}

func (Room) TableName() string {
	return prefix + "room"
}

// RoomUser 房间成员表（“可以进入该房间的用户”）
type RoomUser struct {
	ID       uint64    `gorm:"primarykey"`
	RoomID   uint64    `gorm:"index:idx_room_user,unique;not null"` // 房间 ID
	UserID   uint64    `gorm:"index:idx_room_user,unique;not null"` // 用户 ID
	Role     uint8     `gorm:"type:tinyint;default:0"`              // 角色: 0-普通成员 1-管理员 2-房主
	JoinTime time.Time `gorm:"default:CURRENT_TIMESTAMP"`           // 加入时间

	CreatedAt time.Time
	UpdatedAt time.Time

	Room Room `gorm:"foreignKey:RoomID;references:ID"`
	User User `gorm:"foreignKey:UserID"`
}

func (RoomUser) TableName() string {
	return prefix + "room_user"
}

// 成员角色
const (
	RoleMember = 0
	RoleAdmin  = 1
	RoleOwner  = 2
)

// Message 消息表。RoomID 为 0 表示单聊，此时 RecipientID 有值。
type Message struct {
	ID          uint64         `gorm:"primarykey"`
	RoomID      uint64         `gorm:"index;not null;default:0"` // 房间 ID
	SenderID    uint64         `gorm:"index;not null"`           // 发送者 ID
	RecipientID uint64         `gorm:"index;not null;default:0"` // 单聊接收者 ID
	Type        uint8          `gorm:"type:tinyint;default:1"`   // 消息类型: 1-文本 2-图片 3-语音 4-视频 5-文件 6-位置
	Content     string         `gorm:"type:text;not null"`       // 消息内容
	Extra       datatypes.JSON `gorm:"column:extra;type:json"`
	PacketID    string         `gorm:"size:64"`                // 客户端包 ID
	Status      uint8          `gorm:"type:tinyint;default:0"` // 状态: 0-发送中 1-已发送 2-已送达 3-已读
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Sender User `gorm:"foreignKey:SenderID"`
}

func (Message) TableName() string {
	return prefix + "message"
}

const (
	MessageStatusSending   = 0 //发送中
	MessageStatusSent      = 1 //已发送
	MessageStatusDelivered = 2 //已送达
	MessageStatusRead      = 3 //已读
)

// CallRecord 通话记录（结束后落库）
type CallRecord struct {
	ID             uint64     `gorm:"primarykey"`
	CallID         string     `gorm:"size:36;uniqueIndex;not null"` // 通话 ID
	CallerID       uint64     `gorm:"index;not null"`               // 主叫
	CalleeID       uint64     `gorm:"index;not null"`               // 被叫
	ConferenceType uint8      `gorm:"type:tinyint;default:1"`       // 1-音视频
	State          string     `gorm:"size:20;not null"`             // rejected/ended
	Reason         string     `gorm:"size:64"`                      // 结束原因
	StartedAt      *time.Time // 接通时间
	EndedAt        *time.Time // 结束时间
	DurationSec    int64      `gorm:"default:0"` // 通话时长（秒）
	CreatedAt      time.Time
}

func (CallRecord) TableName() string {
	return prefix + "call_record"
}
