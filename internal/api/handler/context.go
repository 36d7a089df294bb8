package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/madunda/task-manager-api/internal/api/middleware"
	"github.com/madunda/task-manager-api/internal/core/domain"
)

// ctxUser extracts the user resolved by the Auth middleware. Presence proves
// the middleware ran; a missing value on a guarded route means the route was
// wired without it, which is rejected rather than trusted.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.ContextKeyUser).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
	}
	return user, nil
}

// ctxToken extracts the exact bearer token string presented on this request.
func ctxToken(c echo.Context) (string, error) {
	token, _ := c.Get(middleware.ContextKeyToken).(string)
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
	}
	return token, nil
}
