package chat_hub

import (
	"net/http"

	"github.com/cydxin/chat-hub/response"
	"github.com/cydxin/chat-hub/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 房间（Room）相关接口 --------------------

// GinHandleCreateRoom 创建房间
// @Summary 创建房间
// @Description 创建者自动成为房主；members 为可以进入该房间的用户。创建后仍需通过 WS room.enter 进入
// @Tags 房间
// @Accept json
// @Produce json
// @Param req body service.CreateRoomReq true "房间信息"
// @Success 200 {object} response.Response{data=service.RoomDTO} "房间信息"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /room/create [post]
func (c *ChatEngine) GinHandleCreateRoom(ctx *gin.Context) {
	var req service.CreateRoomReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	r, err := c.CreateRoom(uid, req)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(r))
}

// GinHandleGetUserRooms 可进入的房间列表
// @Summary 房间列表
// @Description 当前用户可以进入的房间（自己是成员的 + 公开房间），同时通过事件推送 room.list
// @Tags 房间
// @Produce json
// @Success 200 {object} response.Response{data=[]event.RoomInfo} "房间列表"
// @Security BearerAuth
// @Router /room/list [get]
func (c *ChatEngine) GinHandleGetUserRooms(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	rooms, err := c.RequestRoomList(uid)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(rooms))
}

type RoomMembersReq struct {
	Room    string   `json:"room" binding:"required" example:"lobby"`
	UserIDs []uint64 `json:"user_ids" binding:"required"`
}

// GinHandleAddRoomMember 添加房间成员
// @Summary 添加房间成员
// @Description 房主/管理员把用户加入房间成员表
// @Tags 房间
// @Accept json
// @Produce json
// @Param req body RoomMembersReq true "房间名 + 用户ID列表"
// @Success 200 {object} response.Response "成功响应"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /room/member/add [post]
func (c *ChatEngine) GinHandleAddRoomMember(ctx *gin.Context) {
	var req RoomMembersReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.AddRoomMembers(req.Room, uid, req.UserIDs); err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

type RemoveRoomMemberReq struct {
	Room   string `json:"room" binding:"required" example:"lobby"`
	UserID uint64 `json:"user_id" binding:"required" example:"1002"`
}

// GinHandleRemoveRoomMember 移除房间成员
// @Summary 移除房间成员
// @Description 房主/管理员移除成员，user_id 为自己时表示退出；房主不能被移除
// @Tags 房间
// @Accept json
// @Produce json
// @Param req body RemoveRoomMemberReq true "房间名 + 用户ID"
// @Success 200 {object} response.Response "成功响应"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /room/member/remove [post]
func (c *ChatEngine) GinHandleRemoveRoomMember(ctx *gin.Context) {
	var req RemoveRoomMemberReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.RemoveRoomMember(req.Room, uid, req.UserID); err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleGetRoomMemberList 房间成员
// @Summary 房间成员列表
// @Description 可以进入该房间的全部用户ID，同时通过事件推送 room.users
// @Tags 房间
// @Produce json
// @Param room query string true "房间名"
// @Success 200 {object} response.Response{data=[]uint64} "用户ID列表"
// @Security BearerAuth
// @Router /room/member/list [get]
func (c *ChatEngine) GinHandleGetRoomMemberList(ctx *gin.Context) {
	name := ctx.Query("room")
	if name == "" {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "room is required"))
		return
	}
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	users, err := c.RequestRoomUsers(uid, name)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(users))
}

// GinHandleGetRoomOnlineUsers 房间在线用户
// @Summary 房间在线用户
// @Description 当前已进入该房间的用户ID
// @Tags 房间
// @Produce json
// @Param room query string true "房间名"
// @Success 200 {object} response.Response{data=[]uint64} "用户ID列表"
// @Security BearerAuth
// @Router /room/online [get]
func (c *ChatEngine) GinHandleGetRoomOnlineUsers(ctx *gin.Context) {
	name := ctx.Query("room")
	if name == "" {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "room is required"))
		return
	}
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	if _, err := c.RoomService.CanEnter(name, uid); err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(c.OnlineRoomUsers(name)))
}
