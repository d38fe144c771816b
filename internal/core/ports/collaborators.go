package ports

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/core/domain"
)

// Mailer delivers templated email. Failures are operational: callers decide
// whether they are fatal (password reset) or merely logged (welcome).
type Mailer interface {
	SendWelcome(ctx context.Context, to *domain.User, accountURL string) error
	SendPasswordReset(ctx context.Context, to *domain.User, resetURL string) error
}

// CheckoutSessionInput describes one tour purchase for the payment provider.
type CheckoutSessionInput struct {
	Tour          *domain.Tour
	CustomerEmail string
	ClientRefID   string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the provider's redirectable session.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutProvider creates payment sessions.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, input CheckoutSessionInput) (*CheckoutSession, error)
}

// ImageResizer produces resized JPEG bytes from an uploaded image.
type ImageResizer interface {
	ResizeJPEG(r io.Reader, width, height int) ([]byte, error)
}

// RatingQueue schedules an asynchronous rating recompute for a tour. The call
// never blocks the triggering request and never reports recompute failures
// back to it.
type RatingQueue interface {
	Enqueue(tourID primitive.ObjectID)
}
