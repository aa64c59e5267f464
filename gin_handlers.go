package chat_hub

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cydxin/chat-hub/call"
	"github.com/cydxin/chat-hub/middleware"
	"github.com/cydxin/chat-hub/response"
	"github.com/cydxin/chat-hub/room"
	"github.com/cydxin/chat-hub/service"
	"github.com/gin-gonic/gin"
)

/* 路由分文件：
- handler_user.go    注册/登录/注销/用户信息
- handler_room.go    房间与成员
- handler_message.go 历史消息、HTTP 发送
- handler_call.go    通话记录
*/

// currentUserID 取鉴权中间件写入的 user_id，没有时直接写 401
func currentUserID(ctx *gin.Context) (uint64, bool) {
	v, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found in context"))
		return 0, false
	}
	uid, ok := v.(uint64)
	if !ok || uid == 0 {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "invalid user_id type"))
		return 0, false
	}
	return uid, true
}

// errCode 错误 -> 业务状态码
func errCode(err error) int {
	switch {
	case errors.Is(err, service.ErrBadRequest), errors.Is(err, ErrSelfMessage), errors.Is(err, ErrBadPresence):
		return response.CodeParamError
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, ErrRecipientNotFound):
		return response.CodeUserNotFound
	case errors.Is(err, service.ErrPasswordMismatch):
		return response.CodePasswordError
	case errors.Is(err, service.ErrUserExists):
		return response.CodeUserAlreadyExists
	case errors.Is(err, service.ErrTokenInvalid), errors.Is(err, service.ErrMissingToken), errors.Is(err, ErrSessionFailed):
		return response.CodeTokenInvalid
	case errors.Is(err, service.ErrNoRedis):
		return response.CodeRedisNotConfigured
	case errors.Is(err, service.ErrRoomPermission):
		return response.CodePermissionDeny
	case errors.Is(err, ErrRateLimited):
		return response.CodeRateLimited
	case errors.Is(err, service.ErrRoomExists), errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrNotRoomMember), errors.Is(err, room.ErrNotInRoom):
		return response.CodeRoomError
	case errors.Is(err, call.ErrBusy), errors.Is(err, call.ErrSelfCall), errors.Is(err, call.ErrCallNotFound),
		errors.Is(err, call.ErrNotParticipant), errors.Is(err, call.ErrInvalidState),
		errors.Is(err, call.ErrUnsupportedConference):
		return response.CodeCallError
	default:
		return response.CodeInternalError
	}
}

// parseIDList 解析 "1,2,3"
func parseIDList(s string) ([]uint64, error) {
	var out []uint64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
