package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/query"
)

const collectionBookings = "bookings"

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(collectionBookings)}
}

func (r *BookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, b)
	if err != nil {
		return mapWriteError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Booking
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, mapFindError(err, domain.ErrBookingNotFound)
	}
	return &b, nil
}

func (r *BookingRepository) Find(ctx context.Context, c query.Criteria, tourID *primitive.ObjectID) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	base := bson.M{}
	if tourID != nil {
		base["tour"] = *tourID
	}

	cur, err := r.col.Find(ctx, compileFilter(c, base), compileFindOptions(c))
	if err != nil {
		return nil, err
	}
	var bookings []domain.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, err
	}
	var bookings []domain.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b domain.Booking
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&b)
	if err != nil {
		return nil, mapFindError(err, domain.ErrBookingNotFound)
	}
	return &b, nil
}

func (r *BookingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tour", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
