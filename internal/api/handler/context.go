package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/man7ober/natours/internal/api/middleware"
	"github.com/man7ober/natours/internal/core/domain"
)

// principal extracts the user attached by the auth middleware and performs
// a fast-fail check before any service call: presence of the user proves
// the middleware ran on this route.
func principal(c echo.Context) (*domain.User, error) {
	user := middleware.Principal(c)
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
