package chat_hub

import (
	"net/http"
	"strconv"

	"github.com/cydxin/chat-hub/middleware"
	"github.com/cydxin/chat-hub/response"
	"github.com/cydxin/chat-hub/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 用户（User）相关接口 --------------------

// GinHandleGetUserInfo 获取用户信息 (Gin 版本)
// @Summary 获取用户信息
// @Description 根据 user_id 查询用户详情，如果不传 user_id 则查询当前登录用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param user_id query uint64 false "用户ID (不传则查自己)"
// @Success 200 {object} response.Response{data=service.UserDTO} "查询成功"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 401 {object} response.Response "未登录"
// @Security BearerAuth
// @Router /user/info [get]
func (c *ChatEngine) GinHandleGetUserInfo(ctx *gin.Context) {
	var targetUserID uint64

	if userIDStr := ctx.Query("user_id"); userIDStr != "" {
		id, err := strconv.ParseUint(userIDStr, 10, 64)
		if err != nil || id == 0 {
			ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid user_id"))
			return
		}
		targetUserID = id
	} else {
		// 没传 user_id 查自己，需要配合 GinAuthMiddleware
		uid, ok := currentUserID(ctx)
		if !ok {
			return
		}
		targetUserID = uid
	}

	u, err := c.UserService.GetUser(targetUserID)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(u))
}

// GinHandleUserRegister 用户注册
// @Summary 用户注册
// @Description 创建新用户账号：username + password，nickname/avatar 可选
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.RegisterReq true "注册信息"
// @Success 200 {object} response.Response{data=service.UserDTO} "注册成功"
// @Failure 400 {object} response.Response "请求错误"
// @Router /user/register [post]
func (c *ChatEngine) GinHandleUserRegister(ctx *gin.Context) {
	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	u, err := c.UserService.Register(req)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(u))
}

// GinHandleUserLogin 用户登录
// @Summary 用户登录
// @Description 账号密码登录并返回 token；WS 连接时带上该 token
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.LoginReq true "登录信息"
// @Success 200 {object} response.Response{data=service.LoginResp} "登录响应（token + 用户信息）"
// @Failure 401 {object} response.Response "认证失败"
// @Router /user/login [post]
func (c *ChatEngine) GinHandleUserLogin(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}

	resp, err := c.SessionService.Login(ctx.Request.Context(), req.Account, req.Password)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(resp))
}

type LogoutReq struct {
	All bool `json:"all" example:"false"` // true: 注销所有端
}

// GinHandleUserLogout 注销
// @Summary 注销
// @Description 注销当前 token；all=true 时注销该用户全部 token 并断开会话
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body LogoutReq false "注销范围"
// @Success 200 {object} response.Response "成功响应"
// @Security BearerAuth
// @Router /user/logout [post]
func (c *ChatEngine) GinHandleUserLogout(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req LogoutReq
	// body 可以为空
	_ = ctx.ShouldBindJSON(&req)

	token := ctx.GetString(middleware.ContextTokenKey)
	if err := c.SessionService.Logout(ctx.Request.Context(), uid, token, req.All); err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(map[string]any{"message": "已注销"}))
}

type PresenceReq struct {
	Presence string `json:"presence" binding:"required" example:"away"` // available/unavailable/away
}

// GinHandleSetPresence 设置在线状态
// @Summary 设置在线状态
// @Description 通知同房间的联系人自己的在线状态（available/unavailable/away）
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body PresenceReq true "在线状态"
// @Success 200 {object} response.Response "成功响应"
// @Security BearerAuth
// @Router /user/presence [post]
func (c *ChatEngine) GinHandleSetPresence(ctx *gin.Context) {
	var req PresenceReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	if err := c.SetPresence(uid, req.Presence); err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleGetPresence 批量查询在线状态
// @Summary 查询在线状态
// @Description 按 user_ids（逗号分隔）查询 Redis 里的在线状态，没有记录的为 unavailable。只返回自己和同房间联系人的状态
// @Tags 用户
// @Produce json
// @Param user_ids query string true "用户ID列表，如 1,2,3"
// @Success 200 {object} response.Response{data=map[string]string} "user_id -> presence"
// @Security BearerAuth
// @Router /user/presence [get]
func (c *ChatEngine) GinHandleGetPresence(ctx *gin.Context) {
	ids, err := parseIDList(ctx.Query("user_ids"))
	if err != nil || len(ids) == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid user_ids"))
		return
	}
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	m, err := c.PresenceOf(ctx.Request.Context(), uid, ids)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(errCode(err), err.Error()))
		return
	}
	out := make(map[string]string, len(m))
	for uid, p := range m {
		out[strconv.FormatUint(uid, 10)] = p
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}
