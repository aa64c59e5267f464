package call

import (
	"io"
	"time"

	"github.com/cydxin/chat-hub/event"
)

// Session 一次一对一通话。字段只在 Manager 的锁内修改。
type Session struct {
	ID         string
	Caller     uint64
	Callee     uint64
	Conference event.ConferenceType

	state  State
	reason string

	CreatedAt time.Time
	startedAt time.Time
	endedAt   time.Time

	timer *time.Timer

	// userID -> 渲染目标
	remote map[uint64]io.Writer
	local  map[uint64]io.Writer
}

// Snapshot 通话的只读快照，用于返回给调用方和落库
type Snapshot struct {
	ID         string               `json:"call_id"`
	Caller     uint64               `json:"caller_id"`
	Callee     uint64               `json:"callee_id"`
	Conference event.ConferenceType `json:"conference_type"`
	State      string               `json:"state"`
	Reason     string               `json:"reason,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	StartedAt  *time.Time           `json:"started_at,omitempty"`
	EndedAt    *time.Time           `json:"ended_at,omitempty"`
}

func (s *Session) peer(userID uint64) (uint64, bool) {
	switch userID {
	case s.Caller:
		return s.Callee, true
	case s.Callee:
		return s.Caller, true
	}
	return 0, false
}

func (s *Session) snapshot() Snapshot {
	out := Snapshot{
		ID:         s.ID,
		Caller:     s.Caller,
		Callee:     s.Callee,
		Conference: s.Conference,
		State:      s.state.String(),
		Reason:     s.reason,
		CreatedAt:  s.CreatedAt,
	}
	if !s.startedAt.IsZero() {
		t := s.startedAt
		out.StartedAt = &t
	}
	if !s.endedAt.IsZero() {
		t := s.endedAt
		out.EndedAt = &t
	}
	return out
}

// Duration 通话时长（未开始为 0）
func (s Snapshot) Duration() time.Duration {
	if s.StartedAt == nil || s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(*s.StartedAt)
}
