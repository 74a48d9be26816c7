package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/stafflink/portal_backend/controllers"
	"github.com/stafflink/portal_backend/middleware"
	"github.com/stafflink/portal_backend/repositories"
	"github.com/stafflink/portal_backend/services"
	"github.com/stafflink/portal_backend/websocket"
)

// RegisterPortalRoutes registers the self-service routes: directory,
// profile, rates, holidays, leaves, expenses, news and the notification
// push socket.
func RegisterPortalRoutes(e *echo.Echo, hub *websocket.Hub,
	notificationRepo repositories.NotificationRepository,
	portalController *controllers.PortalController,
	leaveController *controllers.LeaveController,
	expenseController *controllers.ExpenseController,
	newsController *controllers.NewsController) {

	authGroup := e.Group("/api")
	authGroup.Use(middleware.JWTMiddleware())

	authGroup.GET("/directory", portalController.GetDirectory)
	authGroup.GET("/profile", portalController.GetProfile)
	authGroup.GET("/exchange-rates", portalController.GetExchangeRates)
	authGroup.GET("/holidays/:country", portalController.GetHolidays)

	authGroup.POST("/leaves", leaveController.SubmitLeave)
	authGroup.GET("/leaves", leaveController.ListLeaves)

	authGroup.POST("/expenses", expenseController.SubmitExpense)

	authGroup.GET("/news", newsController.GetNews)

	// Each socket runs its own feed: polled from the store, pushed down as
	// feed events, stopped when the peer disconnects.
	authGroup.GET("/ws", func(c echo.Context) error {
		email := middleware.ExtractEmail(c)
		if email == "" {
			return echo.NewHTTPError(401, "Missing session identity")
		}
		feed := services.NewNotificationFeed(notificationRepo, email)
		return websocket.HandleWebSocket(c, hub, email, feed)
	})
}
