package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
)

// ReviewService implements review reads and writes. Every successful write
// enqueues a rating recompute for the parent tour; the request never waits
// for it.
type ReviewService struct {
	reviews ports.ReviewRepository
	tours   ports.TourRepository
	ratings ports.RatingQueue
	logger  zerolog.Logger
}

func NewReviewService(reviews ports.ReviewRepository, tours ports.TourRepository, ratings ports.RatingQueue, logger zerolog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, tours: tours, ratings: ratings, logger: logger}
}

func (s *ReviewService) List(ctx context.Context, c query.Criteria, tourID string) ([]domain.Review, error) {
	var filter *primitive.ObjectID
	if tourID != "" {
		oid, err := parseObjectID(tourID)
		if err != nil {
			return nil, err
		}
		filter = &oid
	}
	return s.reviews.Find(ctx, c, filter)
}

func (s *ReviewService) ListForUser(ctx context.Context, userID string) ([]domain.Review, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	return s.reviews.FindByUser(ctx, oid)
}

func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return s.reviews.FindByID(ctx, oid)
}

func (s *ReviewService) Create(ctx context.Context, input ports.CreateReviewInput) (*domain.Review, error) {
	if err := validateReview(input.Text, input.Rating); err != nil {
		return nil, err
	}
	tourID, err := parseObjectID(input.TourID)
	if err != nil {
		return nil, err
	}
	userID, err := parseObjectID(input.UserID)
	if err != nil {
		return nil, err
	}

	// The referenced tour must exist before accepting the review.
	if _, err := s.tours.FindByID(ctx, tourID); err != nil {
		return nil, err
	}

	review := &domain.Review{
		Text:      strings.TrimSpace(input.Text),
		Rating:    input.Rating,
		CreatedAt: time.Now().UTC(),
		TourID:    tourID,
		UserID:    userID,
	}

	if err := s.reviews.Insert(ctx, review); err != nil {
		return nil, err
	}

	s.ratings.Enqueue(tourID)
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, id string, input ports.UpdateReviewInput) (*domain.Review, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Text != nil {
		text := strings.TrimSpace(*input.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: review text cannot be empty", domain.ErrValidation)
		}
		fields["review"] = text
	}
	if input.Rating != nil {
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
		}
		fields["rating"] = *input.Rating
	}

	review, err := s.reviews.UpdateFields(ctx, oid, fields)
	if err != nil {
		return nil, err
	}

	s.ratings.Enqueue(review.TourID)
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	review, err := s.reviews.Delete(ctx, oid)
	if err != nil {
		return err
	}

	s.ratings.Enqueue(review.TourID)
	return nil
}

func validateReview(text string, rating float64) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: review text cannot be empty", domain.ErrValidation)
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	return nil
}
