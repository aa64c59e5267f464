package service

import (
	"log"

	"github.com/cydxin/chat-hub/call"
	"github.com/cydxin/chat-hub/models"
)

// CallService 通话记录落库与查询
type CallService struct {
	*Service
}

func NewCallService(s *Service) *CallService {
	log.Println("NewCallService")
	return &CallService{Service: s}
}

type CallRecordDTO struct {
	CallID         string `json:"call_id"`
	CallerID       uint64 `json:"caller_id"`
	CalleeID       uint64 `json:"callee_id"`
	ConferenceType uint8  `json:"conference_type"`
	State          string `json:"state"`
	Reason         string `json:"reason"`
	DurationSec    int64  `json:"duration_sec"`
	StartedAt      string `json:"started_at,omitempty"`
	EndedAt        string `json:"ended_at,omitempty"`
}

// SaveRecord 通话结束时调用
func (s *CallService) SaveRecord(snap call.Snapshot) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	rec := &models.CallRecord{
		CallID:         snap.ID,
		CallerID:       snap.Caller,
		CalleeID:       snap.Callee,
		ConferenceType: uint8(snap.Conference),
		State:          snap.State,
		Reason:         snap.Reason,
		StartedAt:      snap.StartedAt,
		EndedAt:        snap.EndedAt,
		DurationSec:    int64(snap.Duration().Seconds()),
		CreatedAt:      snap.CreatedAt,
	}
	return s.DB.Create(rec).Error
}

// ListRecords 用户参与过的通话（新的在前）
func (s *CallService) ListRecords(userID uint64, limit, offset int) ([]CallRecordDTO, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var recs []models.CallRecord
	err := s.DB.Where("caller_id = ? OR callee_id = ?", userID, userID).
		Order("id DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]CallRecordDTO, 0, len(recs))
	for _, r := range recs {
		dto := CallRecordDTO{
			CallID:         r.CallID,
			CallerID:       r.CallerID,
			CalleeID:       r.CalleeID,
			ConferenceType: r.ConferenceType,
			State:          r.State,
			Reason:         r.Reason,
			DurationSec:    r.DurationSec,
		}
		if r.StartedAt != nil {
			dto.StartedAt = r.StartedAt.Format("2006-01-02 15:04:05")
		}
		if r.EndedAt != nil {
			dto.EndedAt = r.EndedAt.Format("2006-01-02 15:04:05")
		}
		out = append(out, dto)
	}
	return out, nil
}
