package ports

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/query"
)

// UserRepository is the persistence port for users. Every read filters out
// soft-deleted (inactive) accounts; nothing user-facing needs them back.
type UserRepository interface {
	Insert(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	Find(ctx context.Context, c query.Criteria) ([]domain.User, error)

	// FindByResetToken matches the stored token hash with an unexpired
	// window relative to now.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)

	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.User, error)

	// UpdatePassword stores a new hash, stamps the changed-at time, and
	// clears any outstanding reset token.
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, changedAt time.Time) error

	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error

	// Deactivate soft-deletes the account.
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	EnsureIndexes(ctx context.Context) error
}
