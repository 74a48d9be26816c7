package controllers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stafflink/portal_backend/models"
	"github.com/stafflink/portal_backend/services"
)

// NewsController serves the company news list sourced from Notion.
type NewsController struct {
	news *services.NewsService
}

func NewNewsController(news *services.NewsService) *NewsController {
	return &NewsController{news: news}
}

// GetNews returns the company news list, newest first.
func (nc *NewsController) GetNews(c echo.Context) error {
	items, err := nc.news.List(c.Request().Context())
	if err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to load company news: %v", err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to load company news",
		})
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "News retrieved",
		Data:    map[string]interface{}{"news": items},
	})
}
