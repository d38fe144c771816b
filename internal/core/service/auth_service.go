package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
)

const (
	bcryptCost    = 12
	resetTokenTTL = 10 * time.Minute

	// changedAtSkew backdates the password-changed stamp so a token issued
	// in the same second as the change is still honoured.
	changedAtSkew = time.Second
)

// AuthService implements signup, login, token verification, and the password
// reset/update flows.
type AuthService struct {
	users     ports.UserRepository
	mailer    ports.Mailer
	logger    zerolog.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
	cookieTTL time.Duration
}

func NewAuthService(users ports.UserRepository, mailer ports.Mailer, logger zerolog.Logger, jwtSecret string, tokenTTL, cookieTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if cookieTTL <= 0 {
		cookieTTL = tokenTTL
	}
	return &AuthService{
		users:     users,
		mailer:    mailer,
		logger:    logger,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		cookieTTL: cookieTTL,
	}
}

func (s *AuthService) CookieTTL() time.Duration { return s.cookieTTL }

func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) (*ports.AuthResult, error) {
	if input.Password != input.PasswordConfirm {
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Photo:        "default.jpg",
		Role:         domain.RoleUser,
		PasswordHash: string(hash),
		Active:       true,
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	// Welcome mail is best effort; the account already exists.
	if err := s.mailer.SendWelcome(ctx, user, "/account"); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("welcome email failed")
	}

	token, err := s.signToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Same response for unknown email and wrong password.
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.signToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthenticated
	}

	id, _ := claims["id"].(string)
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	issuedAt, _ := claims["iat"].(float64)
	if user.PasswordChangedAfter(int64(issuedAt)) {
		return nil, domain.ErrPasswordChanged
	}

	return user, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)

	if err := s.users.SetResetToken(ctx, user.ID, hashToken(token), time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	resetURL := strings.TrimRight(resetURLBase, "/") + "/" + token
	if err := s.mailer.SendPasswordReset(ctx, user, resetURL); err != nil {
		// Token without a delivered mail is useless; take it back.
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.logger.Error().Err(clearErr).Str("email", user.Email).Msg("failed to clear reset token")
		}
		return fmt.Errorf("sending password reset email: %w", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password, passwordConfirm string) (*ports.AuthResult, error) {
	user, err := s.users.FindByResetToken(ctx, hashToken(token), time.Now())
	if err != nil {
		return nil, domain.ErrResetTokenInvalid
	}
	return s.setPassword(ctx, user, password, passwordConfirm)
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, password, passwordConfirm string) (*ports.AuthResult, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.setPassword(ctx, user, password, passwordConfirm)
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password, confirm string) (*ports.AuthResult, error) {
	if password != confirm {
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	changedAt := time.Now().Add(-changedAtSkew)
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash), changedAt); err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	user.PasswordChangedAt = changedAt

	token, err := s.signToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) signToken(id string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  id,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
