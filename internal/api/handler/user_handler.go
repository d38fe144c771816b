package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
)

const (
	photoWidth  = 500
	photoHeight = 500
)

// UserHandler handles HTTP requests for account operations.
type UserHandler struct {
	service ports.UserService
	resizer ports.ImageResizer
	imgDir  string
}

func NewUserHandler(service ports.UserService, resizer ports.ImageResizer, imgDir string) *UserHandler {
	return &UserHandler{service: service, resizer: resizer, imgDir: imgDir}
}

// --- Request types ---

type updateMeRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=3,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`

	// Password fields are bound only to reject them explicitly.
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm"`
}

type adminUpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=3,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(c echo.Context) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"user": user})
}

// UpdateMe handles PATCH /api/v1/users/update-me. Multipart bodies may carry
// a photo file alongside the fields.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, err := principal(c)
	if err != nil {
		return err
	}

	var req updateMeRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if req.Password != nil || req.PasswordConfirm != nil {
		return fmt.Errorf("%w: this route is not for password updates, use /update-password", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := ports.UpdateMeInput{Name: req.Name, Email: req.Email}

	if file, err := c.FormFile("photo"); err == nil {
		name := fmt.Sprintf("user-%s-%d.jpeg", user.ID.Hex(), time.Now().UnixMilli())
		src, err := file.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		data, err := h.resizer.ResizeJPEG(src, photoWidth, photoHeight)
		if err != nil {
			return fmt.Errorf("%w: unreadable image upload", domain.ErrValidation)
		}
		if err := os.WriteFile(filepath.Join(h.imgDir, "users", name), data, 0o644); err != nil {
			return err
		}
		input.Photo = &name
	}

	updated, err := h.service.UpdateMe(c.Request().Context(), user.ID.Hex(), input)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"user": updated})
}

// DeleteMe handles DELETE /api/v1/users/delete-me (soft delete).
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteMe(c.Request().Context(), user.ID.Hex()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /api/v1/users (admin).
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context(), query.Parse(c.QueryParams()))
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, len(users), map[string]any{"users": users})
}

// Get handles GET /api/v1/users/:id (admin).
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"user": user})
}

// Update handles PATCH /api/v1/users/:id (admin).
func (h *UserHandler) Update(c echo.Context) error {
	var req adminUpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.AdminUpdate(c.Request().Context(), c.Param("id"), ports.AdminUpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"user": user})
}

// Delete handles DELETE /api/v1/users/:id (admin).
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.AdminDelete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
