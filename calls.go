package chat_hub

import (
	"context"

	"github.com/cydxin/chat-hub/call"
	"github.com/cydxin/chat-hub/event"
)

// RequestCall caller 呼叫 callee。对方不在线也会响铃，超时后按未接听结束。
func (c *ChatEngine) RequestCall(ctx context.Context, caller, callee uint64, conf event.ConferenceType) (call.Snapshot, error) {
	ok, err := c.UserService.Exists(callee)
	if err != nil {
		return call.Snapshot{}, err
	}
	if !ok {
		return call.Snapshot{}, ErrRecipientNotFound
	}
	return c.Calls.Request(ctx, caller, callee, conf)
}

func (c *ChatEngine) AcceptCall(callID string, userID uint64) (call.Snapshot, error) {
	return c.Calls.Accept(callID, userID)
}

func (c *ChatEngine) RejectCall(callID string, userID uint64) (call.Snapshot, error) {
	return c.Calls.Reject(callID, userID)
}

func (c *ChatEngine) FinishCall(callID string, userID uint64) (call.Snapshot, error) {
	return c.Calls.Finish(callID, userID)
}

// RelayCallFrame 透传媒体/SDP 帧给对方
func (c *ChatEngine) RelayCallFrame(callID string, from uint64, data []byte) error {
	return c.Calls.Relay(callID, from, data)
}
