package controllers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stafflink/portal_backend/middleware"
	"github.com/stafflink/portal_backend/models"
	"github.com/stafflink/portal_backend/services"
	"github.com/stafflink/portal_backend/utils"
)

// PortalController serves the cached read routes: team directory, own
// profile, exchange rates and holiday calendars. Every response carries a
// source tag so the frontend can show a staleness hint.
type PortalController struct {
	staffing *services.StaffingService
	exchange *services.ExchangeService
	holidays *services.HolidayService
}

func NewPortalController(staffing *services.StaffingService, exchange *services.ExchangeService, holidays *services.HolidayService) *PortalController {
	return &PortalController{staffing: staffing, exchange: exchange, holidays: holidays}
}

// GetDirectory returns the team directory snapshot.
func (pc *PortalController) GetDirectory(c echo.Context) error {
	members, source, err := pc.staffing.Directory(c.Request().Context())
	if err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to load directory: %v", err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to load team directory",
		})
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Directory retrieved",
		Data: map[string]interface{}{
			"members": members,
			"source":  source,
		},
	})
}

// GetProfile returns the session member's own profile/contract view.
func (pc *PortalController) GetProfile(c echo.Context) error {
	email := middleware.ExtractEmail(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Missing session identity",
		})
	}

	profile, source, err := pc.staffing.Profile(c.Request().Context(), email)
	if err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to load profile for %s: %v", email, err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to load profile",
		})
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved",
		Data: map[string]interface{}{
			"profile": profile,
			"source":  source,
		},
	})
}

// GetExchangeRates returns the shared exchange-rate snapshot.
func (pc *PortalController) GetExchangeRates(c echo.Context) error {
	rates, source, err := pc.exchange.Rates(c.Request().Context())
	if err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to load exchange rates: %v", err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to load exchange rates",
		})
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Exchange rates retrieved",
		Data: map[string]interface{}{
			"rates":  rates,
			"source": source,
		},
	})
}

// GetHolidays returns the public holiday calendar for one country.
func (pc *PortalController) GetHolidays(c echo.Context) error {
	country := utils.SanitizeCountryCode(c.Param("country"))
	if country == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "country must be a two-letter ISO code",
		})
	}

	holidays, source, err := pc.holidays.ForCountry(c.Request().Context(), country)
	if err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to load holidays for %s: %v", country, err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to load holiday calendar",
		})
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Holidays retrieved",
		Data: map[string]interface{}{
			"holidays": holidays,
			"source":   source,
		},
	})
}
