package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/stafflink/portal_backend/controllers"
	"github.com/stafflink/portal_backend/middleware"
)

// RegisterAdminRoutes registers the administrative cache cleanup action.
// GET is for the cron trigger, POST for a manual run; they do the same
// thing.
func RegisterAdminRoutes(e *echo.Echo, adminController *controllers.AdminController) {
	adminGroup := e.Group("/api/admin")
	adminGroup.Use(middleware.RequireAPIKey("ADMIN_API_KEY", "ADMIN_API_KEY_HASH"))

	adminGroup.GET("/cache/cleanup", adminController.CleanupProfileCache)
	adminGroup.POST("/cache/cleanup", adminController.CleanupProfileCache)
}
