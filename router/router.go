package router

import (
	"github.com/yxlimo/paperhub/handler"
	ginmetrics "github.com/yxlimo/paperhub/metrics/gin"
	"github.com/yxlimo/paperhub/middleware"

	"github.com/gin-gonic/gin"
)

func Setup(
	authHandler *handler.AuthHandler,
	paperHandler *handler.PaperHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
	wsHandler *handler.WSHandler,
) *gin.Engine {
	r := gin.Default()
	r.Use(ginmetrics.PrometheusMiddleware("paperhub"))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/send-code", authHandler.SendCode)
			auth.POST("/send-reset-code", authHandler.SendResetCode)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		papers := api.Group("/papers")
		{
			papers.GET("", paperHandler.List)
			papers.GET("/filters", paperHandler.Filters)
			papers.GET("/:id/preview", paperHandler.Preview)
			papers.POST("/upload", middleware.JWTAuth(), paperHandler.Upload)
			papers.GET("/:id/download", middleware.JWTAuth(), paperHandler.Download)
			papers.POST("/:id/takedown", middleware.JWTAuth(), paperHandler.Takedown)
		}

		user := api.Group("/user", middleware.JWTAuth())
		{
			user.GET("/me", userHandler.Me)
			user.POST("/checkin", userHandler.CheckIn)
			user.GET("/uploads", userHandler.Uploads)
			user.GET("/downloads", userHandler.Downloads)
			user.PATCH("/profile", userHandler.UpdateProfile)
			user.POST("/avatar", userHandler.Avatar)
		}

		admin := api.Group("/admin", middleware.JWTAuth(), middleware.AdminOnly())
		{
			admin.GET("/papers/pending/count", adminHandler.PendingCount)
			admin.GET("/papers/pending", adminHandler.PendingList)
			admin.PUT("/papers/:id/audit", adminHandler.Audit)
		}

		api.GET("/ws", middleware.JWTAuth(), wsHandler.Connect)
	}
	return r
}
