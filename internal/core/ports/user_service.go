package ports

import (
	"context"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/query"
)

// UpdateMeInput is the self-service profile update. Password changes go
// through AuthService.UpdatePassword instead.
type UpdateMeInput struct {
	Name  *string
	Email *string
	Photo *string
}

// AdminUpdateUserInput is the admin-side user update.
type AdminUpdateUserInput struct {
	Name  *string
	Email *string
	Role  *string
}

// UserService exposes account reads and writes.
type UserService interface {
	List(ctx context.Context, c query.Criteria) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)

	UpdateMe(ctx context.Context, userID string, input UpdateMeInput) (*domain.User, error)
	DeleteMe(ctx context.Context, userID string) error

	AdminUpdate(ctx context.Context, id string, input AdminUpdateUserInput) (*domain.User, error)
	AdminDelete(ctx context.Context, id string) error
}
