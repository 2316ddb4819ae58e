package routes

import (
	"greenjobs_backend/internal/handlers"
	"greenjobs_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers) {
	root := ginRouter.Group("")
	{
		appHandlers.HealthHandler.RegisterRoutes(root)
		appHandlers.FileHandler.RegisterRoutes(root)
		appHandlers.EmbedHandler.RegisterRoutes(root)
	}

	// Регистрация HTTP API v1
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.FormHandler.RegisterRoutes(api)
		appHandlers.ApplicationHandler.RegisterRoutes(api)
		appHandlers.DirectoryHandler.RegisterRoutes(api)
		appHandlers.AdminHandler.RegisterRoutes(api)
	}

	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
