package ports

import (
	"context"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/query"
)

// CreateBookingInput is the explicit (admin-side) booking write.
type CreateBookingInput struct {
	TourID string
	UserID string
	Price  float64
}

// UpdateBookingInput is a partial booking update.
type UpdateBookingInput struct {
	Price *float64
	Paid  *bool
}

// BookingService exposes booking reads and writes plus checkout-session
// creation against the payment provider.
type BookingService interface {
	// Checkout creates a payment session for a tour on behalf of a user and
	// returns the provider's redirect target.
	Checkout(ctx context.Context, tourID string, user *domain.User) (*CheckoutSession, error)

	// CreateFromRedirect records the booking encoded in a successful payment
	// redirect (tour, user, price query parameters).
	CreateFromRedirect(ctx context.Context, tourID, userID string, price float64) error

	List(ctx context.Context, c query.Criteria, tourID string) ([]domain.Booking, error)
	Get(ctx context.Context, id string) (*domain.Booking, error)
	Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	Update(ctx context.Context, id string, input UpdateBookingInput) (*domain.Booking, error)
	Delete(ctx context.Context, id string) error

	// ToursForUser resolves the tours a user has booked (my-tours page).
	ToursForUser(ctx context.Context, userID string) ([]domain.Tour, error)

	// ForUser lists a user's own bookings (my-billings page), newest first.
	ForUser(ctx context.Context, userID string) ([]domain.Booking, error)
}
