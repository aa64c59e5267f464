package chat_hub

import (
	"fmt"
	"log"

	"github.com/cydxin/chat-hub/models"
)

// AutoMigrate 建表/补字段，表名带配置的前缀（默认 "im_"）
func (c *ChatEngine) AutoMigrate() error {
	db := c.config.DB
	if db == nil {
		return fmt.Errorf("AutoMigrate: db is nil")
	}

	log.Println("开始迁移表结构...")
	if err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomUser{},
		&models.Message{},
		&models.CallRecord{},
	); err != nil {
		return fmt.Errorf("迁移失败: %w", err)
	}
	log.Println("迁移完成！")
	return nil
}

// isValidTableName 验证表名格式，防止 SQL 注入
func isValidTableName(name string) bool {
	// 只允许字母、数字和下划线
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return len(name) > 0 && len(name) < 64 // MySQL 表名最大 64 字符
}

// applyTablePrefix 校验并应用表名前缀，非法前缀保留默认值
func applyTablePrefix(p string) {
	if p == "" {
		p = models.DefaultTablePrefix
	}
	if !isValidTableName(p) {
		log.Printf("invalid table prefix %q, using %q", p, models.DefaultTablePrefix)
		p = models.DefaultTablePrefix
	}
	models.SetTablePrefix(p)
}
