package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/madunda/task-manager-api/internal/api/metrics"
	"github.com/madunda/task-manager-api/internal/core/ports"
)

// AvatarHandler handles HTTP requests for profile images.
type AvatarHandler struct {
	avatars ports.AvatarService
}

func NewAvatarHandler(avatars ports.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

// Upload handles POST /users/me/avatar. Multipart field "avatar", at most
// 1 MB, jpg/jpeg/png only; the stored result is always a 250x250 PNG.
//
// @Summary      Upload an avatar
// @Tags         avatars
// @Accept       multipart/form-data
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image file (jpg, jpeg or png, max 1MB)"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Router       /users/me/avatar [post]
func (h *AvatarHandler) Upload(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar file is unreadable")
	}
	defer src.Close()

	start := time.Now()
	if err := h.avatars.Store(c.Request().Context(), user.ID, fileHeader.Filename, src, fileHeader.Size); err != nil {
		return err
	}
	metrics.AvatarProcessingDuration.Observe(time.Since(start).Seconds())

	return c.NoContent(http.StatusOK)
}

// GetOwn handles GET /users/me/avatar.
func (h *AvatarHandler) GetOwn(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return h.serve(c, user.ID)
}

// GetByID handles GET /users/:id/avatar — admin only.
func (h *AvatarHandler) GetByID(c echo.Context) error {
	return h.serve(c, c.Param("id"))
}

// Delete handles DELETE /users/me/avatar.
func (h *AvatarHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.avatars.Clear(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

func (h *AvatarHandler) serve(c echo.Context, userID string) error {
	image, err := h.avatars.Fetch(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", image)
}
