package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/madunda/task-manager-api/internal/core/domain"
)

// AdminOnly gates routes behind the admin flag. Must run after Auth.
//
// Rejections use 401, not 403, matching the contract consuming clients
// already depend on.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get(ContextKeyUser).(*domain.User)
			if user == nil || !user.Admin {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing permission")
			}
			return next(c)
		}
	}
}
