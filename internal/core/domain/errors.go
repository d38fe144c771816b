package domain

import "errors"

// Sentinel errors shared across services. The HTTP error handler maps each of
// these to a deterministic status code; everything else is treated as an
// unexpected internal failure.
var (
	ErrTourNotFound    = errors.New("tour not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrDuplicateKey signals a unique-index violation (tour name, user
	// email, or the one-review-per-tour-per-user pair).
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidID signals a malformed document identifier.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrValidation wraps schema-level constraint violations raised by the
	// services themselves (discount >= price, mismatched password confirm).
	ErrValidation = errors.New("validation failed")

	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrPasswordChanged    = errors.New("password changed after token was issued")
	ErrForbidden          = errors.New("access forbidden")

	// ErrResetTokenInvalid covers both an unknown and an expired reset token.
	ErrResetTokenInvalid = errors.New("reset token is invalid or has expired")
)
