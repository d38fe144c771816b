package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/man7ober/natours/internal/core/domain"
)

// RequireRoles restricts a route to principals holding one of the given
// roles. It must run after Protect.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := Principal(c)
			if user == nil {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[user.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
