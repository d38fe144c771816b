package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
)

// RatingMaintainer keeps a tour's ratingsAverage and ratingsQuantity
// consistent with its live reviews. It is invoked asynchronously after every
// review write; a tour left without any review falls back to the defaults
// instead of carrying a stale aggregate.
type RatingMaintainer struct {
	reviews ports.ReviewRepository
	tours   ports.TourRepository
	logger  zerolog.Logger
}

func NewRatingMaintainer(reviews ports.ReviewRepository, tours ports.TourRepository, logger zerolog.Logger) *RatingMaintainer {
	return &RatingMaintainer{reviews: reviews, tours: tours, logger: logger}
}

// Recalculate recomputes count and mean for one tour.
func (m *RatingMaintainer) Recalculate(ctx context.Context, tourID primitive.ObjectID) error {
	stats, err := m.reviews.AggregateRatings(ctx, tourID)
	if err != nil {
		return err
	}

	quantity := 0
	average := domain.DefaultRatingsAverage
	if stats != nil {
		quantity = stats.Quantity
		average = domain.RoundRating(stats.Average)
	}

	if err := m.tours.UpdateRatingStats(ctx, tourID, quantity, average); err != nil {
		return err
	}

	m.logger.Debug().
		Str("tour_id", tourID.Hex()).
		Int("quantity", quantity).
		Float64("average", average).
		Msg("rating aggregate recomputed")
	return nil
}
