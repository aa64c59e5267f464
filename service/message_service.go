package service

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cydxin/chat-hub/models"
	"gorm.io/datatypes"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	maxContentLen       = 8000
)

type MessageService struct {
	*Service
	dao *models.MessageDAO
}

func NewMessageService(s *Service) *MessageService {
	log.Println("NewMessageService")
	return &MessageService{Service: s, dao: models.NewMessageDAO(s.DB)}
}

// MessageDTO 消息数据传输对象
type MessageDTO struct {
	ID          uint64         `json:"id"`
	RoomID      uint64         `json:"room_id"`
	SenderID    uint64         `json:"sender_id"`
	RecipientID uint64         `json:"recipient_id"`
	Type        uint8          `json:"type"`
	Content     string         `json:"content"`
	Extra       datatypes.JSON `json:"extra,omitempty" swaggertype:"object"`
	PacketID    string         `json:"packet_id,omitempty"`
	Status      uint8          `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ToMessageDTO 将 Message 转换为 MessageDTO
func ToMessageDTO(msg *models.Message) *MessageDTO {
	if msg == nil {
		return nil
	}
	return &MessageDTO{
		ID:          msg.ID,
		RoomID:      msg.RoomID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Type:        msg.Type,
		Content:     msg.Content,
		Extra:       msg.Extra,
		PacketID:    msg.PacketID,
		Status:      msg.Status,
		CreatedAt:   msg.CreatedAt,
	}
}

// SaveMessageReq 单聊填 RecipientID，房间消息填 RoomID
type SaveMessageReq struct {
	RoomID      uint64
	SenderID    uint64
	RecipientID uint64
	Type        uint8
	Content     string
	Extra       json.RawMessage
	PacketID    string
}

// SaveMessage 落库一条消息
func (s *MessageService) SaveMessage(req SaveMessageReq) (*models.Message, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	if req.SenderID == 0 {
		return nil, fmt.Errorf("%w: 缺少发送者", ErrBadRequest)
	}
	if (req.RoomID == 0) == (req.RecipientID == 0) {
		return nil, fmt.Errorf("%w: room_id 和 recipient_id 必须且只能有一个", ErrBadRequest)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: 消息内容为空", ErrBadRequest)
	}
	if len(req.Content) > maxContentLen {
		return nil, fmt.Errorf("%w: 消息过长", ErrBadRequest)
	}
	if req.Type == 0 {
		req.Type = 1
	}

	now := time.Now()
	msg := &models.Message{
		RoomID:      req.RoomID,
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Type:        req.Type,
		Content:     req.Content,
		PacketID:    req.PacketID,
		Status:      models.MessageStatusSent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if len(req.Extra) > 0 {
		if !json.Valid(req.Extra) {
			return nil, fmt.Errorf("%w: extra 不是合法 JSON", ErrBadRequest)
		}
		msg.Extra = datatypes.JSON(req.Extra)
	}
	if err := s.dao.Create(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkDelivered 接收方在线推送成功后更新状态
func (s *MessageService) MarkDelivered(id uint64) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.dao.UpdateStatus(id, models.MessageStatusDelivered)
}

// GetPrivateMessages 两人之间的历史消息（新的在前）
func (s *MessageService) GetPrivateMessages(userA, userB uint64, limit int, beforeID uint64) ([]MessageDTO, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	msgs, err := s.dao.FindPrivate(userA, userB, clampLimit(limit), beforeID)
	if err != nil {
		return nil, err
	}
	return toMessageDTOs(msgs), nil
}

// GetRoomMessages 房间历史消息（新的在前）
func (s *MessageService) GetRoomMessages(roomID uint64, limit int, beforeID uint64) ([]MessageDTO, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	msgs, err := s.dao.FindByRoomID(roomID, clampLimit(limit), beforeID)
	if err != nil {
		return nil, err
	}
	return toMessageDTOs(msgs), nil
}

func toMessageDTOs(msgs []models.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(msgs))
	for i := range msgs {
		out = append(out, *ToMessageDTO(&msgs[i]))
	}
	return out
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
