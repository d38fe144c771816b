package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/man7ober/natours/internal/api/middleware"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
)

// ViewHandler renders the server-side pages.
type ViewHandler struct {
	tours    ports.TourService
	users    ports.UserService
	reviews  ports.ReviewService
	bookings ports.BookingService
	log      zerolog.Logger
}

func NewViewHandler(tours ports.TourService, users ports.UserService, reviews ports.ReviewService, bookings ports.BookingService, log zerolog.Logger) *ViewHandler {
	return &ViewHandler{tours: tours, users: users, reviews: reviews, bookings: bookings, log: log}
}

// viewData is the payload every template receives.
type viewData struct {
	Title string
	User  any
	Data  any
}

func (h *ViewHandler) render(c echo.Context, name, title string, data any) error {
	return c.Render(http.StatusOK, name, viewData{
		Title: title,
		User:  middleware.Principal(c),
		Data:  data,
	})
}

// Overview handles GET /. A successful payment redirect lands here with
// tour, user, and price query parameters; the booking is recorded before
// redirecting back to the clean URL.
func (h *ViewHandler) Overview(c echo.Context) error {
	tourID := c.QueryParam("tour")
	userID := c.QueryParam("user")
	priceRaw := c.QueryParam("price")

	if tourID != "" && userID != "" && priceRaw != "" {
		price, err := strconv.ParseFloat(priceRaw, 64)
		if err == nil {
			if err := h.bookings.CreateFromRedirect(c.Request().Context(), tourID, userID, price); err != nil {
				h.log.Error().Err(err).Str("tour", tourID).Msg("booking from payment redirect failed")
			}
		}
		return c.Redirect(http.StatusFound, c.Request().URL.Path)
	}

	tours, err := h.tours.List(c.Request().Context(), query.Parse(nil))
	if err != nil {
		return err
	}
	return h.render(c, "overview", "All Tours", tours)
}

// Tour handles GET /tour/:slug.
func (h *ViewHandler) Tour(c echo.Context) error {
	detail, err := h.tours.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return h.render(c, "tour", detail.Tour.Name+" Tour", detail)
}

// Login handles GET /login.
func (h *ViewHandler) Login(c echo.Context) error {
	return h.render(c, "login", "Log into your account", nil)
}

// Signup handles GET /signup.
func (h *ViewHandler) Signup(c echo.Context) error {
	return h.render(c, "signup", "Create your account", nil)
}

// Account handles GET /account (protected).
func (h *ViewHandler) Account(c echo.Context) error {
	if _, err := principal(c); err != nil {
		return err
	}
	return h.render(c, "account", "Your account", nil)
}

// MyTours handles GET /my-tours (protected).
func (h *ViewHandler) MyTours(c echo.Context) error {
	user, err := principal(c)
	if err != nil {
		return err
	}

	tours, err := h.bookings.ToursForUser(c.Request().Context(), user.ID.Hex())
	if err != nil {
		return err
	}
	return h.render(c, "overview", "My Tours", tours)
}

// MyReviews handles GET /my-reviews (protected).
func (h *ViewHandler) MyReviews(c echo.Context) error {
	user, err := principal(c)
	if err != nil {
		return err
	}

	reviews, err := h.reviews.ListForUser(c.Request().Context(), user.ID.Hex())
	if err != nil {
		return err
	}
	return h.render(c, "my-reviews", "My Reviews", reviews)
}

// MyBillings handles GET /my-billings (protected).
func (h *ViewHandler) MyBillings(c echo.Context) error {
	user, err := principal(c)
	if err != nil {
		return err
	}

	bookings, err := h.bookings.ForUser(c.Request().Context(), user.ID.Hex())
	if err != nil {
		return err
	}
	return h.render(c, "my-billings", "My Billings", bookings)
}

// AdminTours handles GET /admin-tours (admin only).
func (h *ViewHandler) AdminTours(c echo.Context) error {
	tours, err := h.tours.List(c.Request().Context(), query.Parse(nil))
	if err != nil {
		return err
	}
	return h.render(c, "admin-tours", "Manage Tours", tours)
}

// AdminUsers handles GET /admin-users (admin only).
func (h *ViewHandler) AdminUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context(), query.Parse(nil))
	if err != nil {
		return err
	}
	return h.render(c, "admin-users", "Manage Users", users)
}

// AdminReviews handles GET /admin-reviews (admin only).
func (h *ViewHandler) AdminReviews(c echo.Context) error {
	reviews, err := h.reviews.List(c.Request().Context(), query.Parse(nil), "")
	if err != nil {
		return err
	}
	return h.render(c, "admin-reviews", "Manage Reviews", reviews)
}

// AdminBillings handles GET /admin-billings (admin only).
func (h *ViewHandler) AdminBillings(c echo.Context) error {
	bookings, err := h.bookings.List(c.Request().Context(), query.Parse(nil), "")
	if err != nil {
		return err
	}
	return h.render(c, "admin-billings", "Manage Billings", bookings)
}
