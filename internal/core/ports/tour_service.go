package ports

import (
	"context"
	"time"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/query"
)

// CreateTourInput carries all data needed to create a tour.
type CreateTourInput struct {
	Name          string
	Duration      int
	MaxGroupSize  int
	Difficulty    string
	Price         float64
	Discount      float64
	Summary       string
	Description   string
	ImageCover    string
	Images        []string
	StartDates    []time.Time
	Secret        bool
	StartLocation domain.Location
	Locations     []domain.Location
	GuideIDs      []string
}

// UpdateTourInput is a partial update; nil fields are left untouched.
type UpdateTourInput struct {
	Name          *string
	Duration      *int
	MaxGroupSize  *int
	Difficulty    *string
	Price         *float64
	Discount      *float64
	Summary       *string
	Description   *string
	ImageCover    *string
	Images        []string
	StartDates    []time.Time
	Secret        *bool
	StartLocation *domain.Location
	Locations     []domain.Location
	GuideIDs      []string
}

// TourDetail is a tour with its populated reverse-lookup reviews.
type TourDetail struct {
	Tour    domain.Tour     `json:"tour"`
	Reviews []domain.Review `json:"reviews"`
}

// GeoWithinInput parameterises the geo-radius search.
type GeoWithinInput struct {
	Lat      float64
	Lng      float64
	Distance float64
	Unit     string // "mi" or "km"
}

// TourService exposes tour reads and writes.
type TourService interface {
	List(ctx context.Context, c query.Criteria) ([]domain.Tour, error)
	Get(ctx context.Context, id string) (*TourDetail, error)
	GetBySlug(ctx context.Context, slug string) (*TourDetail, error)
	Create(ctx context.Context, input CreateTourInput) (*domain.Tour, error)
	Update(ctx context.Context, id string, input UpdateTourInput) (*domain.Tour, error)
	Delete(ctx context.Context, id string) error

	Stats(ctx context.Context) ([]domain.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error)
	Within(ctx context.Context, input GeoWithinInput) ([]domain.Tour, error)
	Distances(ctx context.Context, lat, lng float64, unit string) ([]domain.TourDistance, error)
}
