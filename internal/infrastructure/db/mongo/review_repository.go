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

const collectionReviews = "reviews"

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(collectionReviews)}
}

func (r *ReviewRepository) Insert(ctx context.Context, rev *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, rev)
	if err != nil {
		return mapWriteError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rev.ID = oid
	}
	return nil
}

// populateStages joins the author and tour snippets onto each review.
func populateStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "author",
			"pipeline": mongo.Pipeline{
				{{Key: "$project", Value: bson.M{"name": 1, "photo": 1, "_id": 0}}},
			},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionTours,
			"localField":   "tour",
			"foreignField": "_id",
			"as":           "tourInfo",
			"pipeline": mongo.Pipeline{
				{{Key: "$project", Value: bson.M{"name": 1, "imageCover": 1, "_id": 0}}},
			},
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$author", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$unwind", Value: bson.M{"path": "$tourInfo", "preserveNullAndEmptyArrays": true}}},
	}
}

func (r *ReviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
	}, populateStages()...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var reviews []domain.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, domain.ErrReviewNotFound
	}
	return &reviews[0], nil
}

func (r *ReviewRepository) Find(ctx context.Context, c query.Criteria, tourID *primitive.ObjectID) ([]domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	base := bson.M{}
	if tourID != nil {
		base["tour"] = *tourID
	}

	sort := bson.D{}
	for _, s := range c.Sort {
		dir := 1
		if s.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: s.Field, Value: dir})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: compileFilter(c, base)}},
	}
	if len(sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$skip", Value: c.Skip()}},
		bson.D{{Key: "$limit", Value: c.Limit}},
	)
	pipeline = append(pipeline, populateStages()...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var reviews []domain.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) FindByTour(ctx context.Context, tourID primitive.ObjectID) ([]domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}, populateStages()...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var reviews []domain.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}, populateStages()...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var reviews []domain.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rev domain.Review
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&rev)
	if err != nil {
		return nil, mapFindError(err, domain.ErrReviewNotFound)
	}
	return &rev, nil
}

// Delete removes the review and hands it back so the caller can schedule the
// parent tour's rating recompute.
func (r *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rev domain.Review
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&rev); err != nil {
		return nil, mapFindError(err, domain.ErrReviewNotFound)
	}
	return &rev, nil
}

func (r *ReviewRepository) AggregateRatings(ctx context.Context, tourID primitive.ObjectID) (*domain.RatingStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$tour",
			"nRating":   bson.M{"$sum": 1},
			"avgRating": bson.M{"$avg": "$rating"},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var stats []domain.RatingStats
	if err := cur.All(ctx, &stats); err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, nil
	}
	return &stats[0], nil
}

func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// One review per (tour, user) pair.
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tour", Value: 1}, {Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
