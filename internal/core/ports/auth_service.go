package ports

import (
	"context"
	"time"

	"github.com/man7ober/natours/internal/core/domain"
)

// SignupInput carries a new account registration.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// AuthResult pairs a signed credential with its subject.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService owns the credential and password lifecycle.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// VerifyToken validates signature and expiry, loads the principal, and
	// rejects tokens issued before the principal's last password change.
	VerifyToken(ctx context.Context, token string) (*domain.User, error)

	// ForgotPassword issues a reset token and emails it; resetURLBase is the
	// externally reachable prefix the token is appended to.
	ForgotPassword(ctx context.Context, email, resetURLBase string) error

	// ResetPassword redeems a previously emailed token.
	ResetPassword(ctx context.Context, token, password, passwordConfirm string) (*AuthResult, error)

	// UpdatePassword changes the password of an authenticated user after
	// verifying the current one.
	UpdatePassword(ctx context.Context, userID, current, password, passwordConfirm string) (*AuthResult, error)

	// CookieTTL is how long the issued credential cookie lives.
	CookieTTL() time.Duration
}
