package chat_hub

import (
	"net/http"
	"strconv"

	"github.com/cydxin/chat-hub/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 通话（Call）相关接口 --------------------
// 信令本身只走 WS（call.request/accept/reject/finish/frame），这里只有查询。

// GinHandleListCallRecords 通话记录
// @Summary 通话记录
// @Description 当前用户作为主叫或被叫的通话记录，新的在前
// @Tags 通话
// @Produce json
// @Param limit query int false "每页数量，默认20，最大100"
// @Param offset query int false "偏移量"
// @Success 200 {object} response.Response{data=[]service.CallRecordDTO} "通话记录"
// @Security BearerAuth
// @Router /call/records [get]
func (c *ChatEngine) GinHandleListCallRecords(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	offset, _ := strconv.Atoi(ctx.Query("offset"))

	list, err := c.CallService.ListRecords(uid, limit, offset)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleGetActiveCall 当前通话
// @Summary 当前通话
// @Description 当前用户正在响铃或进行中的通话，没有时 data 为空
// @Tags 通话
// @Produce json
// @Success 200 {object} response.Response "通话快照"
// @Security BearerAuth
// @Router /call/active [get]
func (c *ChatEngine) GinHandleGetActiveCall(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	snap, found := c.Calls.ActiveCallOf(uid)
	if !found {
		ctx.JSON(http.StatusOK, response.Success(nil))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(snap))
}
