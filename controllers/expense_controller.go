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

// ExpenseController forwards expense refund submissions to the finance
// automation webhook and notifies the finance inbox in-app.
type ExpenseController struct {
	webhook *services.WebhookService
	repo    repositories.NotificationRepository
}

func NewExpenseController(webhook *services.WebhookService, repo repositories.NotificationRepository) *ExpenseController {
	return &ExpenseController{webhook: webhook, repo: repo}
}

// SubmitExpense forwards one expense refund for the session member.
func (ec *ExpenseController) SubmitExpense(c echo.Context) error {
	email := middleware.ExtractEmail(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Missing session identity",
		})
	}

	var req models.ExpenseRefundRequest
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

	if err := ec.webhook.ForwardExpense(c.Request().Context(), email, &req); err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to forward expense for %s: %v", email, err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to submit expense refund",
		})
	}

	if finance := os.Getenv("EXPENSE_NOTIFY_EMAIL"); finance != "" {
		text := fmt.Sprintf("%s submitted an expense refund of %.2f %s: %s", email, req.Amount, req.Currency, req.Description)
		if _, err := ec.repo.Create(c.Request().Context(), finance, text, models.ModuleExpenseRefund, nil); err != nil {
			log.Printf("failed to notify finance about expense from %s: %v", email, err)
		}
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Expense refund submitted",
	})
}
