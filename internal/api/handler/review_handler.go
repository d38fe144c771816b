package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
)

// ReviewHandler handles HTTP requests for review operations, both flat and
// nested under a tour.
type ReviewHandler struct {
	service ports.ReviewService
}

func NewReviewHandler(service ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// --- Request types ---

type createReviewRequest struct {
	Review string  `json:"review" validate:"required"`
	Rating float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Tour   string  `json:"tour"`
}

type updateReviewRequest struct {
	Review *string  `json:"review"`
	Rating *float64 `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

// List handles GET /api/v1/reviews and GET /api/v1/tours/:id/reviews. On
// the nested route the path param scopes the listing to one tour.
func (h *ReviewHandler) List(c echo.Context) error {
	reviews, err := h.service.List(c.Request().Context(), query.Parse(c.QueryParams()), c.Param("id"))
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, len(reviews), map[string]any{"reviews": reviews})
}

// Get handles GET /api/v1/reviews/:id.
func (h *ReviewHandler) Get(c echo.Context) error {
	review, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"review": review})
}

// Create handles POST on both review routes. The tour comes from the nested
// path when the body omits it; the author is always the principal.
func (h *ReviewHandler) Create(c echo.Context) error {
	user, err := principal(c)
	if err != nil {
		return err
	}

	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tourID := req.Tour
	if tourID == "" {
		tourID = c.Param("id")
	}

	review, err := h.service.Create(c.Request().Context(), ports.CreateReviewInput{
		Text:   req.Review,
		Rating: req.Rating,
		TourID: tourID,
		UserID: user.ID.Hex(),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, map[string]any{"review": review})
}

// Update handles PATCH /api/v1/reviews/:id.
func (h *ReviewHandler) Update(c echo.Context) error {
	var req updateReviewRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	review, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateReviewInput{
		Text:   req.Review,
		Rating: req.Rating,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"review": review})
}

// Delete handles DELETE /api/v1/reviews/:id.
func (h *ReviewHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
