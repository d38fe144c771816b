package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
)

// Earth radii used to convert a surface distance into radians.
const (
	earthRadiusMi = 3963.2
	earthRadiusKm = 6378.1
)

// Metres-to-unit multipliers for the distance ranking.
const (
	metresToMi = 0.000621371
	metresToKm = 0.001
)

// TourService implements tour reads and writes. The write path is an explicit
// pipeline: validate, normalise (slug), persist.
type TourService struct {
	tours   ports.TourRepository
	reviews ports.ReviewRepository
	users   ports.UserRepository
	logger  zerolog.Logger
}

func NewTourService(tours ports.TourRepository, reviews ports.ReviewRepository, users ports.UserRepository, logger zerolog.Logger) *TourService {
	return &TourService{tours: tours, reviews: reviews, users: users, logger: logger}
}

func (s *TourService) List(ctx context.Context, c query.Criteria) ([]domain.Tour, error) {
	return s.tours.Find(ctx, c, false)
}

func (s *TourService) Get(ctx context.Context, id string) (*ports.TourDetail, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	tour, err := s.tours.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, tour)
}

func (s *TourService) GetBySlug(ctx context.Context, sl string) (*ports.TourDetail, error) {
	tour, err := s.tours.FindBySlug(ctx, sl)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, tour)
}

// detail populates the reverse-lookup reviews and the guide users.
func (s *TourService) detail(ctx context.Context, tour *domain.Tour) (*ports.TourDetail, error) {
	reviews, err := s.reviews.FindByTour(ctx, tour.ID)
	if err != nil {
		return nil, err
	}
	if len(tour.GuideIDs) > 0 {
		guides, err := s.users.FindByIDs(ctx, tour.GuideIDs)
		if err != nil {
			return nil, err
		}
		tour.Guides = guides
	}
	return &ports.TourDetail{Tour: *tour, Reviews: reviews}, nil
}

func (s *TourService) Create(ctx context.Context, input ports.CreateTourInput) (*domain.Tour, error) {
	if err := validateTourFields(input.Name, input.Difficulty, input.Price, input.Discount); err != nil {
		return nil, err
	}

	guideIDs, err := parseObjectIDs(input.GuideIDs)
	if err != nil {
		return nil, err
	}

	tour := &domain.Tour{
		Name:            strings.TrimSpace(input.Name),
		Slug:            slug.Make(input.Name),
		Duration:        input.Duration,
		MaxGroupSize:    input.MaxGroupSize,
		Difficulty:      domain.Difficulty(input.Difficulty),
		RatingsAverage:  domain.DefaultRatingsAverage,
		RatingsQuantity: 0,
		Price:           input.Price,
		Discount:        input.Discount,
		Summary:         strings.TrimSpace(input.Summary),
		Description:     strings.TrimSpace(input.Description),
		ImageCover:      input.ImageCover,
		Images:          input.Images,
		CreatedAt:       time.Now().UTC(),
		StartDates:      input.StartDates,
		Secret:          input.Secret,
		StartLocation:   normalizeLocation(input.StartLocation),
		Locations:       normalizeLocations(input.Locations),
		GuideIDs:        guideIDs,
	}

	if err := s.tours.Insert(ctx, tour); err != nil {
		return nil, err
	}

	s.logger.Info().Str("tour", tour.Slug).Msg("tour created")
	return tour, nil
}

func (s *TourService) Update(ctx context.Context, id string, input ports.UpdateTourInput) (*domain.Tour, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	current, err := s.tours.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < domain.TourNameMinLen || len(name) > domain.TourNameMaxLen {
			return nil, fmt.Errorf("%w: tour name must be between %d and %d characters",
				domain.ErrValidation, domain.TourNameMinLen, domain.TourNameMaxLen)
		}
		fields["name"] = name
		fields["slug"] = slug.Make(name)
	}
	if input.Difficulty != nil {
		if !domain.Difficulty(*input.Difficulty).Valid() {
			return nil, fmt.Errorf("%w: difficulty must be easy, medium or difficult", domain.ErrValidation)
		}
		fields["difficulty"] = *input.Difficulty
	}

	// Discount must stay below the price the document ends up with.
	price := current.Price
	if input.Price != nil {
		price = *input.Price
		fields["price"] = price
	}
	discount := current.Discount
	if input.Discount != nil {
		discount = *input.Discount
		fields["discount"] = discount
	}
	if discount != 0 && discount >= price {
		return nil, fmt.Errorf("%w: discount must be less than price", domain.ErrValidation)
	}

	if input.Duration != nil {
		fields["duration"] = *input.Duration
	}
	if input.MaxGroupSize != nil {
		fields["maxGroupSize"] = *input.MaxGroupSize
	}
	if input.Summary != nil {
		fields["summary"] = strings.TrimSpace(*input.Summary)
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.ImageCover != nil {
		fields["imageCover"] = *input.ImageCover
	}
	if input.Images != nil {
		fields["images"] = input.Images
	}
	if input.StartDates != nil {
		fields["startDates"] = input.StartDates
	}
	if input.Secret != nil {
		fields["secretTour"] = *input.Secret
	}
	if input.StartLocation != nil {
		fields["startLocation"] = normalizeLocation(*input.StartLocation)
	}
	if input.Locations != nil {
		fields["locations"] = normalizeLocations(input.Locations)
	}
	if input.GuideIDs != nil {
		guideIDs, err := parseObjectIDs(input.GuideIDs)
		if err != nil {
			return nil, err
		}
		fields["guides"] = guideIDs
	}

	if len(fields) == 0 {
		return current, nil
	}
	return s.tours.UpdateFields(ctx, oid, fields)
}

func (s *TourService) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	return s.tours.Delete(ctx, oid)
}

func (s *TourService) Stats(ctx context.Context) ([]domain.TourStats, error) {
	return s.tours.Stats(ctx)
}

func (s *TourService) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error) {
	if year < 1000 || year > 9999 {
		return nil, fmt.Errorf("%w: year must be a four digit number", domain.ErrValidation)
	}
	return s.tours.MonthlyPlan(ctx, year)
}

func (s *TourService) Within(ctx context.Context, input ports.GeoWithinInput) ([]domain.Tour, error) {
	radius := input.Distance / earthRadiusKm
	if input.Unit == "mi" {
		radius = input.Distance / earthRadiusMi
	}
	return s.tours.FindWithinSphere(ctx, input.Lat, input.Lng, radius)
}

func (s *TourService) Distances(ctx context.Context, lat, lng float64, unit string) ([]domain.TourDistance, error) {
	multiplier := metresToKm
	if unit == "mi" {
		multiplier = metresToMi
	}
	return s.tours.DistancesFrom(ctx, lat, lng, multiplier)
}

func validateTourFields(name, difficulty string, price, discount float64) error {
	name = strings.TrimSpace(name)
	if len(name) < domain.TourNameMinLen || len(name) > domain.TourNameMaxLen {
		return fmt.Errorf("%w: tour name must be between %d and %d characters",
			domain.ErrValidation, domain.TourNameMinLen, domain.TourNameMaxLen)
	}
	if !domain.Difficulty(difficulty).Valid() {
		return fmt.Errorf("%w: difficulty must be easy, medium or difficult", domain.ErrValidation)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if discount != 0 && discount >= price {
		return fmt.Errorf("%w: discount must be less than price", domain.ErrValidation)
	}
	return nil
}

func normalizeLocation(l domain.Location) domain.Location {
	if l.Type == "" {
		l.Type = "Point"
	}
	return l
}

func normalizeLocations(ls []domain.Location) []domain.Location {
	out := make([]domain.Location, len(ls))
	for i, l := range ls {
		out[i] = normalizeLocation(l)
	}
	return out
}

func parseObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := parseObjectID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}
