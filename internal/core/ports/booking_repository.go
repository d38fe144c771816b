package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/query"
)

// BookingRepository is the persistence port for bookings.
type BookingRepository interface {
	Insert(ctx context.Context, booking *domain.Booking) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	Find(ctx context.Context, c query.Criteria, tourID *primitive.ObjectID) ([]domain.Booking, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Booking, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.Booking, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}
