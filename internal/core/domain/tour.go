package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Difficulty grades a tour.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

// Valid reports whether d is one of the known difficulty grades.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}

const (
	// DefaultRatingsAverage is the rating a tour carries before (or after)
	// it has any reviews.
	DefaultRatingsAverage = 4.5

	TourNameMinLen = 10
	TourNameMaxLen = 40
)

// Location is a GeoJSON point with presentation metadata. Day is only
// meaningful for waypoints on the itinerary.
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"` // [lng, lat]
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Day         int       `json:"day,omitempty" bson:"day,omitempty"`
}

// Tour is a bookable product and the aggregate the review stats roll up into.
type Tour struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name            string               `json:"name" bson:"name"`
	Slug            string               `json:"slug" bson:"slug"`
	Duration        int                  `json:"duration" bson:"duration"`
	MaxGroupSize    int                  `json:"maxGroupSize" bson:"maxGroupSize"`
	Difficulty      Difficulty           `json:"difficulty" bson:"difficulty"`
	RatingsAverage  float64              `json:"ratingsAverage" bson:"ratingsAverage"`
	RatingsQuantity int                  `json:"ratingsQuantity" bson:"ratingsQuantity"`
	Price           float64              `json:"price" bson:"price"`
	Discount        float64              `json:"discount,omitempty" bson:"discount,omitempty"`
	Summary         string               `json:"summary" bson:"summary"`
	Description     string               `json:"description,omitempty" bson:"description,omitempty"`
	ImageCover      string               `json:"imageCover" bson:"imageCover"`
	Images          []string             `json:"images,omitempty" bson:"images,omitempty"`
	CreatedAt       time.Time            `json:"createdAt" bson:"createdAt"`
	StartDates      []time.Time          `json:"startDates,omitempty" bson:"startDates,omitempty"`
	Secret          bool                 `json:"-" bson:"secretTour"`
	StartLocation   Location             `json:"startLocation" bson:"startLocation"`
	Locations       []Location           `json:"locations,omitempty" bson:"locations,omitempty"`
	GuideIDs        []primitive.ObjectID `json:"-" bson:"guides,omitempty"`

	// Guides is populated on reads from the referenced users; never stored.
	Guides []User `json:"guides,omitempty" bson:"-"`
}

// RoundRating rounds a ratings average to one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// TourStats is one row of the per-difficulty aggregation.
type TourStats struct {
	Difficulty string  `json:"difficulty" bson:"_id"`
	NumTours   int     `json:"numTours" bson:"numTours"`
	NumRatings int     `json:"numRatings" bson:"numRatings"`
	AvgRating  float64 `json:"avgRating" bson:"avgRating"`
	AvgPrice   float64 `json:"avgPrice" bson:"avgPrice"`
	MinPrice   float64 `json:"minPrice" bson:"minPrice"`
	MaxPrice   float64 `json:"maxPrice" bson:"maxPrice"`
}

// MonthlyPlanEntry counts tour starts within one month of a year.
type MonthlyPlanEntry struct {
	Month         int      `json:"month" bson:"month"`
	NumTourStarts int      `json:"numTourStarts" bson:"numTourStarts"`
	Tours         []string `json:"tours" bson:"tours"`
}

// TourDistance is one row of the geo-distance ranking.
type TourDistance struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	Distance float64            `json:"distance" bson:"distance"`
}
