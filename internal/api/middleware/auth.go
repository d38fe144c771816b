package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
)

// PrincipalKey is the echo context key the authenticated user is stored
// under.
const PrincipalKey = "user"

// cookieName is the HttpOnly cookie carrying the JWT for browser sessions.
const cookieName = "jwt"

// Protect authenticates the request: it extracts the credential from the
// Authorization header or the jwt cookie, verifies it, and attaches the
// principal to the context. Missing, invalid, or stale credentials reject
// the request with the unauthenticated sentinel.
func Protect(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return domain.ErrUnauthenticated
			}

			user, err := auth.VerifyToken(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(PrincipalKey, user)
			return next(c)
		}
	}
}

// Optional is the non-blocking variant for rendered pages: any failure
// silently proceeds without a principal, so templates can adapt to the
// logged-in/out state.
func Optional(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := extractToken(c); token != "" {
				if user, err := auth.VerifyToken(c.Request().Context(), token); err == nil {
					c.Set(PrincipalKey, user)
				}
			}
			return next(c)
		}
	}
}

// Principal returns the authenticated user attached by Protect or Optional,
// or nil when the request is anonymous.
func Principal(c echo.Context) *domain.User {
	user, _ := c.Get(PrincipalKey).(*domain.User)
	return user
}

func extractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}
