package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/man7ober/natours/internal/core/domain"
)

// errorResponse is the canonical JSON envelope for all API errors.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"error,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders an HTML error page for browser-facing view routes and the JSON
//     envelope everywhere else.
//
// In development mode the underlying error detail is included in the body.
func NewHTTPErrorHandler(log zerolog.Logger, development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)

		if wantsHTML(c) {
			if rerr := c.Render(code, "error", map[string]any{
				"Title":   "Something went wrong!",
				"Message": msg,
				"Code":    code,
			}); rerr == nil {
				return
			}
		}

		resp := errorResponse{Status: statusWord(code), Message: msg}
		if development {
			resp.Detail = err.Error()
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, "invalid identifier"
	case errors.Is(err, domain.ErrResetTokenInvalid):
		return http.StatusBadRequest, "token is invalid or has expired"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "incorrect email or password"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "you are not logged in, please log in to get access"
	case errors.Is(err, domain.ErrPasswordChanged):
		return http.StatusUnauthorized, "password was changed recently, please log in again"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "you do not have permission to perform this action"
	case errors.Is(err, domain.ErrTourNotFound):
		return http.StatusNotFound, "no tour found with that ID"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "no user found with that ID"
	case errors.Is(err, domain.ErrReviewNotFound):
		return http.StatusNotFound, "no review found with that ID"
	case errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound, "no booking found with that ID"
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict, "duplicate field value, please use another value"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "something went wrong"
}

// wantsHTML reports whether the request came from a browser page rather than
// the JSON API.
func wantsHTML(c echo.Context) bool {
	path := c.Request().URL.Path
	if strings.HasPrefix(path, "/api") {
		return false
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

func statusWord(code int) string {
	if code >= http.StatusInternalServerError {
		return "error"
	}
	return "fail"
}
