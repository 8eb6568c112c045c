package router

import (
	"net/http"

	"github.com/Junheng-Zheng/Junbot/config"
	"github.com/Junheng-Zheng/Junbot/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func Setup(
	cfg *config.Config,
	chatHandler *handler.ChatHandler,
	taskHandler *handler.TaskHandler,
	settingsHandler *handler.SettingsHandler,
	activityHandler *handler.ActivityHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// 无状态接口，对话记录与任务列表由客户端携带
		api.POST("/chat", chatHandler.Chat)

		api.POST("/turns", chatHandler.SendTurn)

		messages := api.Group("/messages")
		{
			messages.GET("", chatHandler.ListMessages)
			messages.DELETE("", chatHandler.ClearMessages)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.List)
			tasks.POST("", taskHandler.Create)
			tasks.DELETE("/:id", taskHandler.Complete)
		}

		api.GET("/settings", settingsHandler.Get)
		api.PUT("/settings", settingsHandler.Update)

		api.GET("/activity", activityHandler.List)
	}

	return r
}
