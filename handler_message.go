package chat_hub

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cydxin/chat-hub/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 消息（Message）相关接口 --------------------

// GinHandleGetPrivateMessages 单聊历史消息
// @Summary 单聊历史消息
// @Description 与 peer_id 之间的历史消息，按 id 倒序；before_id 用于向前翻页
// @Tags 消息
// @Produce json
// @Param peer_id query uint64 true "对方用户ID"
// @Param limit query int false "每页数量，默认20，最大100"
// @Param before_id query uint64 false "只取 id 小于它的消息"
// @Success 200 {object} response.Response{data=[]service.MessageDTO} "消息列表"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /message/private [get]
func (c *ChatEngine) GinHandleGetPrivateMessages(ctx *gin.Context) {
	peerID, err := strconv.ParseUint(ctx.Query("peer_id"), 10, 64)
	if err != nil || peerID == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid peer_id"))
		return
	}
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	beforeID, _ := strconv.ParseUint(ctx.Query("before_id"), 10, 64)

	list, err := c.GetPrivateMessages(uid, peerID, limit, beforeID)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleGetRoomMessages 获取房间消息列表
// @Summary 获取房间消息
// @Description 分页获取房间历史消息，需要有进入该房间的权限
// @Tags 消息
// @Produce json
// @Param room query string true "房间名"
// @Param limit query int false "每页数量，默认20，最大100"
// @Param before_id query uint64 false "只取 id 小于它的消息"
// @Success 200 {object} response.Response{data=[]service.MessageDTO} "消息列表"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /message/room [get]
func (c *ChatEngine) GinHandleGetRoomMessages(ctx *gin.Context) {
	name := ctx.Query("room")
	if name == "" {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "room is required"))
		return
	}
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	beforeID, _ := strconv.ParseUint(ctx.Query("before_id"), 10, 64)

	list, err := c.GetRoomMessages(uid, name, limit, beforeID)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

type SendMessageReq struct {
	To       uint64          `json:"to" example:"1002"`    // 单聊接收者，与 room 二选一
	Room     string          `json:"room" example:"lobby"` // 房间名，需要已进入
	Type     uint8           `json:"type" example:"1"`     // 1-文本 2-图片 3-语音 4-视频 5-文件 6-位置
	Content  string          `json:"content" binding:"required" example:"hello"`
	Extra    json.RawMessage `json:"extra" swaggertype:"object"`
	PacketID string          `json:"packet_id" example:"c-123"` // 客户端包ID，原样回传
}

// GinHandleSendMessage HTTP 发送消息
// @Summary 发送消息
// @Description 与 WS 上行 message/room.message 等价：失败时发布 chat.message_not_sent
// @Tags 消息
// @Accept json
// @Produce json
// @Param req body SendMessageReq true "消息"
// @Success 200 {object} response.Response{data=event.ChatMessage} "已保存的消息"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /message/send [post]
func (c *ChatEngine) GinHandleSendMessage(ctx *gin.Context) {
	var req SendMessageReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	if (req.To == 0) == (req.Room == "") {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "one of to/room is required"))
		return
	}
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var err error
	var msg any
	if req.Room != "" {
		msg, err = c.SendRoomMessage(ctx.Request.Context(), uid, req.Room, req.Content, req.Type, req.Extra, req.PacketID)
	} else {
		msg, err = c.SendMessage(ctx.Request.Context(), uid, req.To, req.Content, req.Type, req.Extra, req.PacketID)
	}
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(msg))
}
