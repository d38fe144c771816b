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

const collectionUsers = "users"

// activeFilter hides soft-deleted accounts on every read path.
var activeFilter = bson.M{"active": bson.M{"$ne": false}}

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

func (r *UserRepository) Insert(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return mapWriteError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, withActive(bson.M{"_id": id}))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, withActive(bson.M{"email": email}))
}

func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	return r.findOne(ctx, withActive(bson.M{
		"passwordResetToken":   tokenHash,
		"passwordResetExpires": bson.M{"$gt": now},
	}))
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapFindError(err, domain.ErrUserNotFound)
	}
	return &u, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, withActive(bson.M{"_id": bson.M{"$in": ids}}))
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Find(ctx context.Context, c query.Criteria) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, compileFilter(c, activeFilter), compileFindOptions(c))
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u domain.User
	err := r.col.FindOneAndUpdate(ctx, withActive(bson.M{"_id": id}), bson.M{"$set": fields}, opts).Decode(&u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, mapFindError(err, domain.ErrUserNotFound)
	}
	return &u, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, changedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"password":          hash,
			"passwordChangedAt": changedAt,
		},
		"$unset": bson.M{
			"passwordResetToken":   "",
			"passwordResetExpires": "",
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"passwordResetToken":   tokenHash,
		"passwordResetExpires": expires,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateByID(ctx, id, bson.M{"$unset": bson.M{
		"passwordResetToken":   "",
		"passwordResetExpires": "",
	}})
	return err
}

func (r *UserRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "passwordResetToken", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func withActive(filter bson.M) bson.M {
	for k, v := range activeFilter {
		filter[k] = v
	}
	return filter
}
