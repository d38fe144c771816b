package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/man7ober/natours/internal/core/domain"
)

func roleContext(t *testing.T, role domain.Role) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(PrincipalKey, &domain.User{Name: "Ayla Cornell", Role: role})
	return c, rec
}

func TestRequireRoles_Allowed(t *testing.T) {
	c, rec := roleContext(t, domain.RoleAdmin)

	mw := RequireRoles(domain.RoleAdmin, domain.RoleLeadGuide)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRequireRoles_Forbidden(t *testing.T) {
	c, _ := roleContext(t, domain.RoleUser)

	mw := RequireRoles(domain.RoleAdmin, domain.RoleLeadGuide)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRequireRoles_NoPrincipal(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := RequireRoles(domain.RoleAdmin)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
