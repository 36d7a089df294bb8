package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/madunda/task-manager-api/internal/core/ports"
)

// Context keys populated by Auth for downstream handlers.
const (
	ContextKeyUser  = "user"
	ContextKeyToken = "token"
)

// Auth validates the bearer token and resolves the user behind it.
//
// A token passes only when both hold: the JWT signature and expiry check out,
// and the exact token string is still present in the user's persisted token
// list. The second condition gives logout real teeth, since a signature
// cannot be invalidated once issued.
func Auth(jwtSecret string, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
			}
			raw := parts[1]

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
			}

			userID, _ := claims["user_id"].(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
			}

			user, err := users.FindByIDWithToken(c.Request().Context(), userID, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
			}

			c.Set(ContextKeyUser, user)
			c.Set(ContextKeyToken, raw)

			return next(c)
		}
	}
}
