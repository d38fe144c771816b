package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// --- Request types ---

type createBookingRequest struct {
	Tour  string  `json:"tour" validate:"required"`
	User  string  `json:"user" validate:"required"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

type updateBookingRequest struct {
	Price *float64 `json:"price" validate:"omitempty,gt=0"`
	Paid  *bool    `json:"paid"`
}

// CheckoutSession handles GET /api/v1/bookings/checkout-session/:tourId.
func (h *BookingHandler) CheckoutSession(c echo.Context) error {
	user, err := principal(c)
	if err != nil {
		return err
	}

	session, err := h.service.Checkout(c.Request().Context(), c.Param("tourId"), user)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"session": session})
}

// List handles GET /api/v1/bookings and GET /api/v1/tours/:id/bookings. On
// the nested route the path param scopes the listing to one tour.
func (h *BookingHandler) List(c echo.Context) error {
	bookings, err := h.service.List(c.Request().Context(), query.Parse(c.QueryParams()), c.Param("id"))
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, len(bookings), map[string]any{"bookings": bookings})
}

// Get handles GET /api/v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	booking, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"booking": booking})
}

// Create handles POST /api/v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	booking, err := h.service.Create(c.Request().Context(), ports.CreateBookingInput{
		TourID: req.Tour,
		UserID: req.User,
		Price:  req.Price,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, map[string]any{"booking": booking})
}

// Update handles PATCH /api/v1/bookings/:id.
func (h *BookingHandler) Update(c echo.Context) error {
	var req updateBookingRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	booking, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateBookingInput{
		Price: req.Price,
		Paid:  req.Paid,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"booking": booking})
}

// Delete handles DELETE /api/v1/bookings/:id.
func (h *BookingHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
