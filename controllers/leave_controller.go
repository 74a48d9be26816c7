package controllers

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/stafflink/portal_backend/middleware"
	"github.com/stafflink/portal_backend/models"
	"github.com/stafflink/portal_backend/repositories"
	"github.com/stafflink/portal_backend/services"
)

// LeaveController forwards leave requests to the leave system and notifies
// the approver in-app. The portal stores no leave state.
type LeaveController struct {
	leaves *services.LeaveService
	repo   repositories.NotificationRepository
}

func NewLeaveController(leaves *services.LeaveService, repo repositories.NotificationRepository) *LeaveController {
	return &LeaveController{leaves: leaves, repo: repo}
}

// SubmitLeave files a leave request for the session member.
func (lc *LeaveController) SubmitLeave(c echo.Context) error {
	email := middleware.ExtractEmail(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Missing session identity",
		})
	}

	var req models.LeaveRequest
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

	entry, err := lc.leaves.Submit(c.Request().Context(), email, &req)
	if err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to submit leave for %s: %v", email, err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to submit leave request",
		})
	}

	// Notify the approver in-app. The leave is already filed, so a failed
	// notification is only logged.
	if approver := os.Getenv("LEAVE_APPROVER_EMAIL"); approver != "" {
		text := fmt.Sprintf("%s requested %s leave from %s to %s", email, req.Type, req.StartDate, req.EndDate)
		if _, err := lc.repo.Create(c.Request().Context(), approver, text, models.ModuleLeaves, &entry.ID); err != nil {
			log.Printf("failed to notify approver about leave %s: %v", entry.ID, err)
		}
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Leave request submitted",
		Data:    entry,
	})
}

// ListLeaves returns the session member's own leave records.
func (lc *LeaveController) ListLeaves(c echo.Context) error {
	email := middleware.ExtractEmail(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Missing session identity",
		})
	}

	entries, err := lc.leaves.ListForMember(c.Request().Context(), email)
	if err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to list leaves for %s: %v", email, err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to load leave requests",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Leave requests retrieved",
		Data:    map[string]interface{}{"leaves": entries},
	})
}
