package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
)

type stubAuth struct {
	user *domain.User
	err  error
}

func (s *stubAuth) Signup(context.Context, ports.SignupInput) (*ports.AuthResult, error) {
	return nil, nil
}

func (s *stubAuth) Login(context.Context, string, string) (*ports.AuthResult, error) {
	return nil, nil
}

func (s *stubAuth) VerifyToken(_ context.Context, token string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubAuth) ForgotPassword(context.Context, string, string) error { return nil }

func (s *stubAuth) ResetPassword(context.Context, string, string, string) (*ports.AuthResult, error) {
	return nil, nil
}

func (s *stubAuth) UpdatePassword(context.Context, string, string, string, string) (*ports.AuthResult, error) {
	return nil, nil
}

func (s *stubAuth) CookieTTL() time.Duration { return time.Hour }

func TestProtect_BearerHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	user := &domain.User{Name: "Ayla Cornell", Role: domain.RoleUser}
	mw := Protect(&stubAuth{user: user})

	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		if got := Principal(c); got != user {
			t.Fatalf("principal not attached")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestProtect_Cookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "good-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	user := &domain.User{Name: "Ayla Cornell"}
	mw := Protect(&stubAuth{user: user})

	handler := mw(func(c echo.Context) error {
		if Principal(c) == nil {
			t.Fatalf("principal not attached from cookie")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestProtect_MissingCredential(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Protect(&stubAuth{user: &domain.User{}})
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestProtect_MalformedHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Protect(&stubAuth{user: &domain.User{}})
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestProtect_StaleToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Protect(&stubAuth{err: domain.ErrPasswordChanged})
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrPasswordChanged) {
		t.Fatalf("expected password-changed error, got %v", err)
	}
}

func TestOptional_InvalidTokenProceedsAnonymously(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "bad"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Optional(&stubAuth{err: domain.ErrUnauthenticated})
	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		if Principal(c) != nil {
			t.Fatalf("expected anonymous principal")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}
