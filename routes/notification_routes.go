package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/stafflink/portal_backend/controllers"
	"github.com/stafflink/portal_backend/middleware"
)

// RegisterNotificationRoutes registers all notification-related routes
func RegisterNotificationRoutes(e *echo.Echo, notificationController *controllers.NotificationController) {
	// Public create endpoint for external systems holding the shared
	// secret (staffing sync, finance automation).
	public := e.Group("/api/public")
	public.Use(middleware.RequireAPIKey("NOTIFICATIONS_API_KEY", "NOTIFICATIONS_API_KEY_HASH"))
	public.POST("/notifications", notificationController.CreateNotification)

	// Session-scoped endpoints.
	authGroup := e.Group("/api")
	authGroup.Use(middleware.JWTMiddleware())

	authGroup.POST("/notifications", notificationController.CreateNotification)
	authGroup.GET("/notifications", notificationController.ListNotifications)
	authGroup.PUT("/notifications/read-all", notificationController.MarkAllNotificationsRead)
	authGroup.PUT("/notifications/:id/read", notificationController.MarkNotificationRead)
}
