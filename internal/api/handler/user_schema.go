package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/madunda/task-manager-api/internal/core/domain"
)

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=7"`
	Age      int    `json:"age"      validate:"gte=0"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// updateUserRequest carries the allow-listed profile fields; nil means the
// field was absent from the request body.
type updateUserRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=1"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=7"`
	Age      *int    `json:"age"      validate:"omitempty,gte=0"`
}

type authResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// decodeStrict unmarshals the request body into v, rejecting any key that is
// not a field of v. This is the allow-list: {name, email, password, age} for
// users, {description, completed} for tasks — anything else is a 400 before
// any state changes.
func decodeStrict(c echo.Context, v any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid updates")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return nil
}

// queryBool parses an optional boolean query parameter; nil means absent or
// unparseable.
func queryBool(c echo.Context, name string) *bool {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// queryInt parses an optional non-negative integer query parameter, returning
// 0 for absent or unparseable input.
func queryInt(c echo.Context, name string) int64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
