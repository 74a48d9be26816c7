package controllers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stafflink/portal_backend/middleware"
	"github.com/stafflink/portal_backend/models"
	"github.com/stafflink/portal_backend/repositories"
	"github.com/stafflink/portal_backend/services"
	"github.com/stafflink/portal_backend/websocket"
)

type NotificationController struct {
	repo   repositories.NotificationRepository
	hub    *websocket.Hub
	mailer *services.Mailer
}

func NewNotificationController(repo repositories.NotificationRepository, hub *websocket.Hub, mailer *services.Mailer) *NotificationController {
	return &NotificationController{repo: repo, hub: hub, mailer: mailer}
}

// CreateNotification inserts a notification for a recipient. The same
// handler serves the internal route (JWT) and the public route (shared
// secret); the route registration decides which guard applies.
func (nc *NotificationController) CreateNotification(c echo.Context) error {
	var req models.CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Missing or invalid fields: " + err.Error(),
		})
	}

	notification, err := nc.repo.Create(c.Request().Context(), req.Email, req.Text, models.Module(req.Module), req.EntityID)
	if err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to create notification for %s: %v", req.Email, err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: err.Error(),
		})
	}

	// Delivery beyond the store is best-effort: connected sessions get a
	// push, and an email copy goes out when SMTP is configured. Neither
	// can fail the create.
	if nc.hub != nil {
		nc.hub.PushNotification(notification)
	}
	if nc.mailer != nil {
		go nc.mailer.SendNotificationCopy(notification)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Notification created",
		Data:    notification,
	})
}

// ListNotifications returns all notifications for the session identity,
// newest first, optionally narrowed by ?filter=all|read|unread. The
// identity always comes from the session, never from the request.
func (nc *NotificationController) ListNotifications(c echo.Context) error {
	email := middleware.ExtractEmail(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Missing session identity",
		})
	}

	filter, ok := models.ParseNotificationFilter(c.QueryParam("filter"))
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "filter must be one of all, read, unread",
		})
	}

	notifications, err := nc.repo.List(c.Request().Context(), email, filter)
	if err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to list notifications for %s: %v", email, err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to load notifications",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications retrieved",
		Data:    models.NotificationListResponse{Notifications: notifications},
	})
}

// MarkNotificationRead stamps the read timestamp on one owned
// notification. A notification that doesn't exist and one owned by another
// recipient both come back 404.
func (nc *NotificationController) MarkNotificationRead(c echo.Context) error {
	email := middleware.ExtractEmail(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Missing session identity",
		})
	}

	id := c.Param("id")
	notification, err := nc.repo.MarkRead(c.Request().Context(), id, email)
	if err != nil {
		status := models.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.Printf("failed to mark notification %s read for %s: %v", id, email, err)
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification marked as read",
		Data:    notification,
	})
}

// MarkAllNotificationsRead stamps every unread notification of the session
// identity.
func (nc *NotificationController) MarkAllNotificationsRead(c echo.Context) error {
	email := middleware.ExtractEmail(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Missing session identity",
		})
	}

	count, err := nc.repo.MarkAllRead(c.Request().Context(), email)
	if err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to mark all notifications read for %s: %v", email, err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to mark notifications as read",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications marked as read",
		Data:    map[string]int64{"updated": count},
	})
}
