package controllers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stafflink/portal_backend/cache"
	"github.com/stafflink/portal_backend/models"
	"github.com/stafflink/portal_backend/repositories"
)

// cacheCleanupFlag is the settings-table feature flag gating the cleanup
// endpoint.
const cacheCleanupFlag = "cache_cleanup_enabled"

// AdminController hosts the administrative cache cleanup action. The route
// itself is guarded by the shared-secret middleware; on top of that the
// action only runs when the feature flag is on.
type AdminController struct {
	cache    *cache.Store
	settings repositories.SettingsRepository
}

func NewAdminController(store *cache.Store, settings repositories.SettingsRepository) *AdminController {
	return &AdminController{cache: store, settings: settings}
}

// CleanupProfileCache evicts expired entries from the team-member profile
// cache. Registered for both GET (cron trigger) and POST (manual); the two
// forms are identical.
func (ac *AdminController) CleanupProfileCache(c echo.Context) error {
	enabled, err := ac.settings.IsFlagEnabled(c.Request().Context(), cacheCleanupFlag)
	if err != nil {
		status := models.HTTPStatus(err)
		log.Printf("failed to read %s flag: %v", cacheCleanupFlag, err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to read feature flag",
		})
	}
	if !enabled {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Cache cleanup is disabled",
		})
	}

	evicted := ac.cache.CleanupExpired(c.Request().Context(), cache.Profile)
	log.Printf("cache cleanup evicted %d expired profile entries", evicted)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Cache cleanup complete",
		Data:    map[string]int{"evicted": evicted},
	})
}
