package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/talentlink/talentlink/internal/auth"
	"github.com/talentlink/talentlink/internal/handlers"
	"github.com/talentlink/talentlink/internal/middleware"
	"github.com/talentlink/talentlink/internal/services"
)

// Dependencies collects everything the HTTP router needs.
type Dependencies struct {
	DB            *gorm.DB
	JWT           *auth.JWTService
	Users         *services.UserService
	Notifications *services.NotificationService
	Notifier      *services.Notifier
}

// NewRouter assembles the gin engine with middleware and all routes.
func NewRouter(deps Dependencies) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.Recovery(), middleware.Logger(), middleware.Metrics())
	engine.NoRoute(middleware.NotFoundHandler)

	health := handlers.NewHealthHandler(deps.DB)
	engine.GET("/health", health.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.Users, deps.JWT, deps.Notifier)

	api := engine.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		authed := api.Group("")
		authed.Use(middleware.Auth(deps.JWT))
		{
			authed.GET("/auth/me", authHandler.Me)
			registerNotificationRoutes(authed, deps.Notifications)
		}
	}

	return engine
}
