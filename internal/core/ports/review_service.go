package ports

import (
	"context"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/query"
)

// CreateReviewInput carries a new review. UserID is always the acting
// principal; TourID may come from the nested route.
type CreateReviewInput struct {
	Text   string
	Rating float64
	TourID string
	UserID string
}

// UpdateReviewInput is a partial review update.
type UpdateReviewInput struct {
	Text   *string
	Rating *float64
}

// ReviewService exposes review reads and writes. Every write schedules an
// asynchronous rating recompute for the parent tour.
type ReviewService interface {
	List(ctx context.Context, c query.Criteria, tourID string) ([]domain.Review, error)

	// ListForUser resolves the reviews an author has written (my-reviews
	// page), newest first.
	ListForUser(ctx context.Context, userID string) ([]domain.Review, error)
	Get(ctx context.Context, id string) (*domain.Review, error)
	Create(ctx context.Context, input CreateReviewInput) (*domain.Review, error)
	Update(ctx context.Context, id string, input UpdateReviewInput) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
}
