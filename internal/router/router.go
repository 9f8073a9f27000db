package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trendies_market_v1/internal/controller"
	"trendies_market_v1/internal/middleware"
	"trendies_market_v1/pkg/logger"
)

// Controllers 路由依赖的控制器
type Controllers struct {
	Auth    *controller.AuthController
	User    *controller.UserController
	Listing *controller.ListingController
	Wizard  *controller.WizardController
}

// SetupRouter 创建 gin 引擎并注册全部路由
func SetupRouter(log *zap.Logger, ctls Controllers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), logger.GinLogger(log), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	InitRoutes(r, ctls)
	return r
}

// InitRoutes 注册所有 API 路由
func InitRoutes(r *gin.Engine, ctls Controllers) {
	api := r.Group("/api")
	{
		// auth 登录组
		auth := api.Group("/auth")
		{
			// GET /api/auth/google/login
			auth.GET("/google/login", ctls.Auth.Login)
			// GET /api/auth/google/callback
			auth.GET("/google/callback", ctls.Auth.Callback)
			// POST /api/auth/refresh
			auth.POST("/refresh", ctls.Auth.RefreshToken)
		}

		// users 当前用户
		users := api.Group("/users", middleware.JWTAuth())
		{
			users.GET("/me", ctls.User.Me)
		}

		// listings 提交流水线自行判断登录态，未登录返回 "Authentication required."
		listings := api.Group("/listings", middleware.OptionalAuth())
		{
			listings.POST("", ctls.Listing.CreateListing)
			listings.GET("/mine", ctls.Listing.ListMyListings)
			listings.POST("/suggest-price", ctls.Listing.SuggestPrice)
			listings.GET("/price-breakdown", ctls.Listing.PriceBreakdown)
		}

		// wizard 会话按用户隔离，必须登录
		wizard := api.Group("/wizard", middleware.JWTAuth())
		{
			wizard.POST("", ctls.Wizard.Start)
			wizard.GET("", ctls.Wizard.Get)
			wizard.DELETE("", ctls.Wizard.Discard)
			wizard.PATCH("/fields", ctls.Wizard.SetFields)
			wizard.PUT("/photos/:slot", ctls.Wizard.UploadPhoto)
			wizard.DELETE("/photos/:slot", ctls.Wizard.ClearPhoto)
			wizard.POST("/next", ctls.Wizard.Next)
			wizard.POST("/back", ctls.Wizard.Back)
			wizard.POST("/suggest-price", ctls.Wizard.SuggestPrice)
			wizard.POST("/submit", ctls.Wizard.Submit)
		}
	}
}
