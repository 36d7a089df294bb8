package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/madunda/task-manager-api/internal/api/metrics"
	"github.com/madunda/task-manager-api/internal/core/domain"
	"github.com/madunda/task-manager-api/internal/core/ports"
)

// UserHandler handles HTTP requests for account operations.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create handles POST /users — signup.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Signup fields (name, email, password, age)"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req registerRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.users.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		return err
	}

	metrics.UsersRegisteredTotal.Inc()
	return c.JSON(http.StatusCreated, authResponse{User: user, Token: token})
}

// Login handles POST /users/login.
//
// @Summary      Login with email and password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManyAttempts):
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		default:
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, authResponse{User: user, Token: token})
}

// Logout handles POST /users/logout — revokes exactly the presented token.
func (h *UserHandler) Logout(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	token, err := ctxToken(c)
	if err != nil {
		return err
	}

	if err := h.users.Logout(c.Request().Context(), user.ID, token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

// LogoutAll handles POST /users/logoutAll — revokes every session.
func (h *UserHandler) LogoutAll(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.users.LogoutAll(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out everywhere"})
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe handles PATCH /users/me. Only {name, email, password, age} may
// appear in the body; any other key is rejected before anything is stored.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.users.Update(c.Request().Context(), user.ID, ports.UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteMe handles DELETE /users/me. The goodbye mail is enqueued, never
// awaited; task records go with the account.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// List handles GET /users — admin only.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        admin   query  bool    false  "Filter by admin flag"
// @Param        skip    query  int     false  "Number of records to skip"
// @Param        limit   query  int     false  "Maximum records to return"
// @Param        sortBy  query  string  false  "Sort as field:asc or field:desc"
// @Success      200  {array}   domain.User
// @Failure      401  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context(), ports.ListUsersInput{
		Admin:  queryBool(c, "admin"),
		Skip:   queryInt(c, "skip"),
		Limit:  queryInt(c, "limit"),
		SortBy: c.QueryParam("sortBy"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteByID handles DELETE /users/:id — admin only.
func (h *UserHandler) DeleteByID(c echo.Context) error {
	user, err := h.users.DeleteByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
