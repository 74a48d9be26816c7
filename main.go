package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/stafflink/portal_backend/cache"
	"github.com/stafflink/portal_backend/config"
	"github.com/stafflink/portal_backend/controllers"
	"github.com/stafflink/portal_backend/middleware"
	"github.com/stafflink/portal_backend/repositories"
	"github.com/stafflink/portal_backend/routes"
	"github.com/stafflink/portal_backend/services"
	"github.com/stafflink/portal_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (optional; cache degrades to misses without it)
	redisClient := config.ConnectRedis()
	cacheStore := cache.NewStore(redisClient)

	// Connect to database and run migrations
	db := config.ConnectDB()
	defer db.Close()

	// Create WebSocket hub for notification push
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Team member portal backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize repositories
	notificationRepo := repositories.NewNotificationRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	// Initialize upstream clients
	staffingService := services.NewStaffingService(cacheStore)
	exchangeService := services.NewExchangeService(cacheStore)
	holidayService := services.NewHolidayService(cacheStore)
	leaveService := services.NewLeaveService()
	newsService := services.NewNewsService()
	webhookService := services.NewWebhookService()
	mailer := services.NewMailer()

	// Initialize controllers
	notificationController := controllers.NewNotificationController(notificationRepo, wsHub, mailer)
	portalController := controllers.NewPortalController(staffingService, exchangeService, holidayService)
	leaveController := controllers.NewLeaveController(leaveService, notificationRepo)
	expenseController := controllers.NewExpenseController(webhookService, notificationRepo)
	newsController := controllers.NewNewsController(newsService)
	adminController := controllers.NewAdminController(cacheStore, settingsRepo)

	// Register routes
	routes.RegisterNotificationRoutes(e, notificationController)
	routes.RegisterPortalRoutes(e, wsHub, notificationRepo, portalController, leaveController, expenseController, newsController)
	routes.RegisterAdminRoutes(e, adminController)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
