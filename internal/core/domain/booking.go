package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking records a paid reservation of one tour by one user. Price is the
// amount actually paid, which may differ from the tour's current price.
type Booking struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TourID    primitive.ObjectID `json:"tour" bson:"tour"`
	UserID    primitive.ObjectID `json:"user" bson:"user"`
	Price     float64            `json:"price" bson:"price"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	Paid      bool               `json:"paid" bson:"paid"`
}
