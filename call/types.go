package call

import (
	"errors"
	"fmt"
	"io"
)

// Signaler 是 call 包对传输层的唯一依赖：把信令/媒体帧发给某个用户。
// WsServer 通过 engine 里的一个小适配器实现它。
type Signaler interface {
	Send(userID uint64, payload any) error
}

// TargetProvider 提供视频渲染目标：对方的视频流 / 自己的视频流。
// 返回 nil 表示不渲染。
type TargetProvider interface {
	RemoteTarget(callID string, userID uint64) io.Writer
	LocalTarget(callID string, userID uint64) io.Writer
}

// State 单个通话的状态
type State uint8

const (
	Ringing State = iota
	Accepted
	Active
	Rejected
	Ended
)

func (s State) String() string {
	switch s {
	case Ringing:
		return "ringing"
	case Accepted:
		return "accepted"
	case Active:
		return "active"
	case Rejected:
		return "rejected"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Terminal 是否已结束
func (s State) Terminal() bool {
	return s == Rejected || s == Ended
}

var (
	ErrBusy                  = errors.New("user is already in a call")
	ErrSelfCall              = errors.New("cannot call yourself")
	ErrCallNotFound          = errors.New("call not found")
	ErrNotParticipant        = errors.New("user is not a participant of this call")
	ErrInvalidState          = errors.New("invalid call state")
	ErrUnsupportedConference = errors.New("unsupported conference type")
)
