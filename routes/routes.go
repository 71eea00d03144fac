package routes

import (
	"net/http"

	"campus_shelf/app"
	"campus_shelf/controllers"
	"campus_shelf/session"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	stateCtl := controllers.NewStateController(s)
	bookCtl := controllers.NewBookController(s)
	reqCtl := controllers.NewRequestController(s)
	hubCtl := controllers.NewHubController(s)
	aiCtl := controllers.NewAssistantController(s)

	// 复用的中间件
	authMW := app.AuthRequired(session.NewAppSessionStore(a.RDB, a.Config.Session.TTL), a.Repo)
	seenMW := app.TouchLastSeen(a.Repo, a.RDB, a.Config.Session.LastSeenThrottle, a.Log)

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	// ------------------------------
	// 登录（公开）/ 登出 / 资料
	// ------------------------------
	r.POST("/api/auth/login", authCtl.Login)

	api := r.Group("/api", authMW, seenMW)
	{
		api.POST("/auth/logout", authCtl.Logout)
		api.GET("/auth/me", authCtl.Me)
		api.PUT("/profile", authCtl.UpdateProfile)
		api.GET("/coins", s.Coins)
	}

	// ------------------------------
	// 会话状态：view / segment / 偏好
	// ------------------------------
	{
		api.GET("/state", stateCtl.Get)
		api.PUT("/state", stateCtl.Put)
		api.POST("/state/segment", stateCtl.SwitchSegment)
		api.POST("/state/view", stateCtl.Navigate)
		api.GET("/view", stateCtl.View)
		api.GET("/prefs", stateCtl.GetPrefs)
		api.PUT("/prefs", stateCtl.PutPrefs)
	}

	// ------------------------------
	// 书目与请求
	// ------------------------------
	books := api.Group("/books")
	{
		books.GET("", bookCtl.List) // ?q=
		books.GET("/mine", bookCtl.Mine)
		books.POST("", bookCtl.Create)
		books.POST("/:id/request", reqCtl.Request)
		books.GET("/:id/offer", reqCtl.Offer)
		books.POST("/:id/acquire", reqCtl.Acquire)
	}

	requests := api.Group("/requests")
	{
		requests.GET("", reqCtl.Mine)
		requests.GET("/incoming", reqCtl.Incoming) // ?status=&q=&page=&size=
		requests.PATCH("/:id", reqCtl.SetStatus)
	}

	// ------------------------------
	// 校园圈 / 反馈
	// ------------------------------
	{
		api.GET("/hub/peers", hubCtl.Peers) // ?q=
		api.POST("/hub/peers/:id/connect", hubCtl.Connect)
		api.POST("/feedback", hubCtl.Feedback)
	}

	// ------------------------------
	// AI 助手
	// ------------------------------
	ai := api.Group("/assistant")
	{
		ai.POST("/chat", aiCtl.Chat)
		ai.GET("/suggestions", aiCtl.Suggestions) // ?q=
		ai.POST("/recommend", aiCtl.Recommend)
		ai.POST("/preview", aiCtl.Preview)
		ai.POST("/ebooks", aiCtl.EBooks)
		ai.POST("/icebreaker", aiCtl.Icebreaker)
		ai.POST("/condition", aiCtl.Condition)
		ai.POST("/libraries", aiCtl.Libraries)
	}
}
