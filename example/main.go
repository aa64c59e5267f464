package main

import (
	"log"
	"time"

	"github.com/cydxin/chat-hub"
	"github.com/cydxin/chat-hub/event"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// 1. 初始化数据库连接
	dsn := "root:password@tcp(127.0.0.1:3306)/chat_db?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}

	// Token 和在线状态存在 Redis
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	// 2. 初始化 Chat Engine（单例模式，全局只需调用一次）
	engine := chat_hub.NewEngine(
		chat_hub.WithDB(db),
		chat_hub.WithRDB(rdb),
		chat_hub.WithCallTimeout(45*time.Second),
		chat_hub.WithSendRateLimit(rate.Limit(2), 10),
		chat_hub.WithSessionGrace(5*time.Second),
	)
	defer engine.Shutdown()

	// 服务端视角的观察者：UserID 为 0 收所有用户的事件
	remove := engine.AddDelegate(&chat_hub.Delegate{
		ChatDidLogin: func(userID uint64) {
			log.Printf("user %d login", userID)
		},
		ChatDidNotSendMessage: func(userID uint64, msg *event.ChatMessage, err error) {
			log.Printf("user %d message %q not sent: %v", userID, msg.PacketID, err)
		},
		ChatCallDidStop: func(userID, peerID uint64, callID, status string) {
			log.Printf("call %s stopped for %d (peer %d): %s", callID, userID, peerID, status)
		},
	})
	defer remove()

	// 3. 创建 Gin 路由
	r := gin.Default()

	// 设置 CORS（如果需要）
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 注册 Swagger UI
	chat_hub.RegisterSwagger(r, "/swagger/*any")

	// 4. WebSocket 连接路由
	// 客户端连接：ws://localhost:8080/ws?token=xxx（登录接口返回的 token）
	r.GET("/ws", engine.GinHandleWS)

	// 5. API 路由组
	api := r.Group("/api/v1")
	api.POST("/user/register", engine.GinHandleUserRegister)
	api.POST("/user/login", engine.GinHandleUserLogin)

	authed := api.Group("", engine.GinAuthMiddleware(nil))

	userAPI := authed.Group("/user")
	{
		userAPI.GET("/info", engine.GinHandleGetUserInfo)
		userAPI.POST("/logout", engine.GinHandleUserLogout)
		userAPI.POST("/presence", engine.GinHandleSetPresence)
		userAPI.GET("/presence", engine.GinHandleGetPresence)
	}

	// 房间模块
	roomAPI := authed.Group("/room")
	{
		roomAPI.POST("/create", engine.GinHandleCreateRoom)
		roomAPI.GET("/list", engine.GinHandleGetUserRooms)
		roomAPI.POST("/member/add", engine.GinHandleAddRoomMember)
		roomAPI.POST("/member/remove", engine.GinHandleRemoveRoomMember)
		roomAPI.GET("/member/list", engine.GinHandleGetRoomMemberList)
		roomAPI.GET("/online", engine.GinHandleGetRoomOnlineUsers)
	}

	// 消息模块
	messageAPI := authed.Group("/message")
	{
		messageAPI.GET("/private", engine.GinHandleGetPrivateMessages)
		messageAPI.GET("/room", engine.GinHandleGetRoomMessages)
		messageAPI.POST("/send", engine.GinHandleSendMessage)
	}

	// 通话模块
	callAPI := authed.Group("/call")
	{
		callAPI.GET("/records", engine.GinHandleListCallRecords)
		callAPI.GET("/active", engine.GinHandleGetActiveCall)
	}

	// 6. 启动服务器
	log.Println("Chat Server 启动在 :8080")
	log.Println("Swagger UI: http://localhost:8080/swagger/index.html")
	log.Println("WebSocket 地址: ws://localhost:8080/ws?token=YOUR_TOKEN")
	if err := r.Run(":8080"); err != nil {
		log.Fatal("服务器启动失败:", err)
	}
}
