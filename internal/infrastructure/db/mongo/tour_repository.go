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

const collectionTours = "tours"

type TourRepository struct {
	col *mongo.Collection
}

func NewTourRepository(db *mongo.Database) *TourRepository {
	return &TourRepository{col: db.Collection(collectionTours)}
}

func (r *TourRepository) Insert(ctx context.Context, t *domain.Tour) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, t)
	if err != nil {
		return mapWriteError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid
	}
	return nil
}

// Single-document reads hide secret tours the same way listings do, so a
// secret tour is unreachable by ID or slug through the public read paths.
func (r *TourRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Tour, error) {
	return r.findOne(ctx, notSecret(bson.M{"_id": id}))
}

func (r *TourRepository) FindBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	return r.findOne(ctx, notSecret(bson.M{"slug": slug}))
}

func notSecret(filter bson.M) bson.M {
	filter["secretTour"] = bson.M{"$ne": true}
	return filter
}

func (r *TourRepository) findOne(ctx context.Context, filter bson.M) (*domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Tour
	if err := r.col.FindOne(ctx, filter).Decode(&t); err != nil {
		return nil, mapFindError(err, domain.ErrTourNotFound)
	}
	return &t, nil
}

func (r *TourRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var tours []domain.Tour
	if err := cur.All(ctx, &tours); err != nil {
		return nil, err
	}
	return tours, nil
}

func (r *TourRepository) Find(ctx context.Context, c query.Criteria, includeSecret bool) ([]domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	base := bson.M{}
	if !includeSecret {
		base = notSecret(base)
	}

	cur, err := r.col.Find(ctx, compileFilter(c, base), compileFindOptions(c))
	if err != nil {
		return nil, err
	}
	var tours []domain.Tour
	if err := cur.All(ctx, &tours); err != nil {
		return nil, err
	}
	return tours, nil
}

func (r *TourRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t domain.Tour
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&t)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, mapFindError(err, domain.ErrTourNotFound)
	}
	return &t, nil
}

func (r *TourRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrTourNotFound
	}
	return nil
}

func (r *TourRepository) UpdateRatingStats(ctx context.Context, id primitive.ObjectID, quantity int, average float64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"ratingsQuantity": quantity,
		"ratingsAverage":  average,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTourNotFound
	}
	return nil
}

// Stats groups tours by difficulty over those rated at least 4.5.
func (r *TourRepository) Stats(ctx context.Context) ([]domain.TourStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ratingsAverage": bson.M{"$gte": 4.5}}}},
		{{Key: "$group", Value: bson.M{
			"_id":        bson.M{"$toUpper": "$difficulty"},
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingsQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingsAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"avgPrice": 1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var stats []domain.TourStats
	if err := cur.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// MonthlyPlan unwinds start dates within one year and counts starts by month.
func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": from, "$lte": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"$month": "$startDates"},
			"numTourStarts": bson.M{"$sum": 1},
			"tours":         bson.M{"$push": "$name"},
		}}},
		{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
		{{Key: "$sort", Value: bson.M{"numTourStarts": -1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var plan []domain.MonthlyPlanEntry
	if err := cur.All(ctx, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *TourRepository) FindWithinSphere(ctx context.Context, lat, lng, radius float64) ([]domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"startLocation": bson.M{
		"$geoWithin": bson.M{
			"$centerSphere": bson.A{bson.A{lng, lat}, radius},
		},
	}}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var tours []domain.Tour
	if err := cur.All(ctx, &tours); err != nil {
		return nil, err
	}
	return tours, nil
}

func (r *TourRepository) DistancesFrom(ctx context.Context, lat, lng, multiplier float64) ([]domain.TourDistance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// $geoNear must be the first pipeline stage.
	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": bson.A{lng, lat},
			},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
		}}},
		{{Key: "$project", Value: bson.M{"name": 1, "distance": 1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var distances []domain.TourDistance
	if err := cur.All(ctx, &distances); err != nil {
		return nil, err
	}
	return distances, nil
}

func (r *TourRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "price", Value: 1}, {Key: "ratingsAverage", Value: -1}}},
		{Keys: bson.D{{Key: "startLocation", Value: "2dsphere"}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
