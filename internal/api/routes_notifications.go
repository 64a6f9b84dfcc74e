package api

import (
	"github.com/gin-gonic/gin"

	"github.com/talentlink/talentlink/internal/handlers"
	"github.com/talentlink/talentlink/internal/middleware"
	"github.com/talentlink/talentlink/internal/services"
)

func registerNotificationRoutes(group *gin.RouterGroup, notifications *services.NotificationService) {
	handler := handlers.NewNotificationHandler(notifications)

	routes := group.Group("/notifications")
	{
		routes.GET("", handler.List)
		routes.POST("", handler.Create)
		routes.GET("/unread-count", handler.UnreadCount)
		routes.GET("/statistics", handler.Statistics)
		routes.POST("/:id/read", handler.MarkRead)
		routes.POST("/read-all", handler.MarkAllRead)
		routes.DELETE("/:id", handler.Delete)

		admin := routes.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/system", handler.Broadcast)
			admin.POST("/cleanup", handler.Cleanup)
		}
	}
}
