package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
)

// UserService implements account reads, the self-service profile operations,
// and the admin-side user management.
type UserService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(users ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) List(ctx context.Context, c query.Criteria) ([]domain.User, error) {
	return s.users.Find(ctx, c)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, oid)
}

func (s *UserService) UpdateMe(ctx context.Context, userID string, input ports.UpdateMeInput) (*domain.User, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < 3 || len(name) > 50 {
			return nil, fmt.Errorf("%w: name must be between 3 and 50 characters", domain.ErrValidation)
		}
		fields["name"] = name
	}
	if input.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Photo != nil {
		fields["photo"] = *input.Photo
	}
	if len(fields) == 0 {
		return s.users.FindByID(ctx, oid)
	}
	return s.users.UpdateFields(ctx, oid, fields)
}

func (s *UserService) DeleteMe(ctx context.Context, userID string) error {
	oid, err := parseObjectID(userID)
	if err != nil {
		return err
	}
	if err := s.users.Deactivate(ctx, oid); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Msg("account deactivated")
	return nil
}

func (s *UserService) AdminUpdate(ctx context.Context, id string, input ports.AdminUpdateUserInput) (*domain.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Role != nil {
		role := domain.Role(*input.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *input.Role)
		}
		fields["role"] = role
	}
	if len(fields) == 0 {
		return s.users.FindByID(ctx, oid)
	}
	return s.users.UpdateFields(ctx, oid, fields)
}

func (s *UserService) AdminDelete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	return s.users.Delete(ctx, oid)
}
