package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/query"
)

// TourRepository is the persistence port for tours.
type TourRepository interface {
	Insert(ctx context.Context, tour *domain.Tour) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Tour, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Tour, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Tour, error)

	// Find lists tours matching the criteria. Secret tours are excluded
	// unless includeSecret is set.
	Find(ctx context.Context, c query.Criteria, includeSecret bool) ([]domain.Tour, error)

	// UpdateFields applies a partial update and returns the new document.
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.Tour, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// UpdateRatingStats overwrites the derived rating aggregate.
	UpdateRatingStats(ctx context.Context, id primitive.ObjectID, quantity int, average float64) error

	Stats(ctx context.Context) ([]domain.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error)

	// FindWithinSphere returns tours whose start location lies inside the
	// sphere centred at lat/lng with the given radius in radians.
	FindWithinSphere(ctx context.Context, lat, lng, radius float64) ([]domain.Tour, error)

	// DistancesFrom ranks all tours by distance from lat/lng. The multiplier
	// converts metres to the caller's unit.
	DistancesFrom(ctx context.Context, lat, lng, multiplier float64) ([]domain.TourDistance, error)

	EnsureIndexes(ctx context.Context) error
}
