// middleware/api_key_middleware.go
package middleware

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stafflink/portal_backend/models"
	"github.com/stafflink/portal_backend/utils"
)

// RequireAPIKey guards endpoints used by external systems. The credential
// is a single static bearer string presented in X-Api-Key or as a Bearer
// token; holding it grants full access to the guarded endpoint.
// keyEnv/hashEnv name the environment variables carrying the plaintext key
// or its bcrypt hash.
func RequireAPIKey(keyEnv, hashEnv string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			presented := c.Request().Header.Get("X-Api-Key")
			if presented == "" {
				auth := c.Request().Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					presented = strings.TrimPrefix(auth, "Bearer ")
				}
			}

			plain := os.Getenv(keyEnv)
			hash := os.Getenv(hashEnv)
			if plain == "" && hash == "" {
				log.Printf("api key middleware: neither %s nor %s is configured", keyEnv, hashEnv)
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "API key authentication is not configured",
				})
			}

			if !utils.VerifyAPIKey(presented, plain, hash) {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid API key",
				})
			}
			return next(c)
		}
	}
}
