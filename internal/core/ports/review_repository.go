package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/query"
)

// ReviewRepository is the persistence port for reviews. Reads populate the
// author (name, photo) and tour (name, cover) snippets.
type ReviewRepository interface {
	Insert(ctx context.Context, review *domain.Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Review, error)

	// Find lists reviews matching the criteria; a non-nil tourID narrows the
	// listing to one tour.
	Find(ctx context.Context, c query.Criteria, tourID *primitive.ObjectID) ([]domain.Review, error)

	FindByTour(ctx context.Context, tourID primitive.ObjectID) ([]domain.Review, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Review, error)

	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.Review, error)

	// Delete removes the review and returns it, so callers still know which
	// tour needs its aggregate recomputed.
	Delete(ctx context.Context, id primitive.ObjectID) (*domain.Review, error)

	// AggregateRatings recomputes count and mean over the live reviews of a
	// tour. A tour with no reviews yields a nil result.
	AggregateRatings(ctx context.Context, tourID primitive.ObjectID) (*domain.RatingStats, error)

	EnsureIndexes(ctx context.Context) error
}
