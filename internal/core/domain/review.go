package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a rating plus text for one tour by one user. A (tour, user) pair
// is unique, enforced by a compound index.
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Text      string             `json:"review" bson:"review"`
	Rating    float64            `json:"rating" bson:"rating"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	TourID    primitive.ObjectID `json:"tour" bson:"tour"`
	UserID    primitive.ObjectID `json:"user" bson:"user"`

	// Author and Tour are populated on reads; never stored.
	Author *ReviewAuthor `json:"author,omitempty" bson:"author,omitempty"`
	Tour   *ReviewTour   `json:"tourInfo,omitempty" bson:"tourInfo,omitempty"`
}

// ReviewAuthor is the subset of the writing user shown alongside a review.
type ReviewAuthor struct {
	Name  string `json:"name" bson:"name"`
	Photo string `json:"photo,omitempty" bson:"photo,omitempty"`
}

// ReviewTour is the subset of the reviewed tour shown alongside a review.
type ReviewTour struct {
	Name       string `json:"name" bson:"name"`
	ImageCover string `json:"imageCover" bson:"imageCover"`
}

// RatingStats is the recomputed aggregate for one tour.
type RatingStats struct {
	Quantity int     `bson:"nRating"`
	Average  float64 `bson:"avgRating"`
}
