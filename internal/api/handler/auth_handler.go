package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
)

// AuthHandler handles HTTP requests for the credential lifecycle.
type AuthHandler struct {
	service ports.AuthService
}

func NewAuthHandler(service ports.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// --- Request types ---

type signupRequest struct {
	Name            string `json:"name" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type updatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// Signup handles POST /api/v1/users/signup.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.Signup(c.Request().Context(), ports.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return err
	}
	return h.respondAuthed(c, http.StatusCreated, result)
}

// Login handles POST /api/v1/users/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.respondAuthed(c, http.StatusOK, result)
}

// Logout handles GET /api/v1/users/logout by replacing the session cookie
// with a short-lived dummy value.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "jwt",
		Value:    "loggedout",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Path:     "/",
	})
	return respond(c, http.StatusOK, nil)
}

// ForgotPassword handles POST /api/v1/users/forgot-password.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	base := fmt.Sprintf("%s://%s/api/v1/users/reset-password", c.Scheme(), c.Request().Host)
	if err := h.service.ForgotPassword(c.Request().Context(), req.Email, base); err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]string{"message": "Token sent to email!"})
}

// ResetPassword handles PATCH /api/v1/users/reset-password/:token.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	return h.respondAuthed(c, http.StatusOK, result)
}

// UpdatePassword handles PATCH /api/v1/users/update-password (protected).
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	user, err := principal(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.UpdatePassword(c.Request().Context(), user.ID.Hex(), req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	return h.respondAuthed(c, http.StatusOK, result)
}

// respondAuthed sets the session cookie and returns the token plus the
// subject in the body.
func (h *AuthHandler) respondAuthed(c echo.Context, code int, result *ports.AuthResult) error {
	secure := c.IsTLS() || c.Request().Header.Get(echo.HeaderXForwardedProto) == "https"
	c.SetCookie(&http.Cookie{
		Name:     "jwt",
		Value:    result.Token,
		Expires:  time.Now().Add(h.service.CookieTTL()),
		HttpOnly: true,
		Secure:   secure,
		Path:     "/",
	})

	return c.JSON(code, envelope{
		Status: "success",
		Token:  result.Token,
		Data:   map[string]any{"user": result.User},
	})
}
