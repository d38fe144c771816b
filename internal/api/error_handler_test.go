package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/man7ober/natours/internal/core/domain"
)

func handleError(t *testing.T, err error, development bool) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop(), development)(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	return rec, body
}

func TestErrorHandler_SentinelMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{domain.ErrInvalidID, http.StatusBadRequest},
		{domain.ErrResetTokenInvalid, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrPasswordChanged, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrTourNotFound, http.StatusNotFound},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrReviewNotFound, http.StatusNotFound},
		{domain.ErrBookingNotFound, http.StatusNotFound},
		{domain.ErrDuplicateKey, http.StatusConflict},
	}

	for _, tc := range cases {
		rec, body := handleError(t, tc.err, false)
		if rec.Code != tc.code {
			t.Fatalf("%v: status = %d, want %d", tc.err, rec.Code, tc.code)
		}
		if body.Status == "" || body.Message == "" {
			t.Fatalf("%v: incomplete body %+v", tc.err, body)
		}
	}
}

func TestErrorHandler_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("%w: discount must be less than price", domain.ErrValidation)
	rec, body := handleError(t, wrapped, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body.Message == "" {
		t.Fatalf("message lost on wrapped error")
	}
}

func TestErrorHandler_UnexpectedErrorIsGeneric(t *testing.T) {
	rec, body := handleError(t, fmt.Errorf("driver exploded: connection reset"), false)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body.Message != "something went wrong" {
		t.Fatalf("internal detail leaked: %q", body.Message)
	}
	if body.Detail != "" {
		t.Fatalf("detail included outside development mode")
	}
}

func TestErrorHandler_DevelopmentIncludesDetail(t *testing.T) {
	_, body := handleError(t, fmt.Errorf("driver exploded"), true)
	if body.Detail != "driver exploded" {
		t.Fatalf("detail = %q, want underlying error", body.Detail)
	}
}

func TestErrorHandler_EchoHTTPErrorPassesThrough(t *testing.T) {
	rec, _ := handleError(t, echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), false)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
}
