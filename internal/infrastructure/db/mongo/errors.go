package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/man7ober/natours/internal/core/domain"
)

// mapWriteError converts driver-level write failures into domain sentinels.
// Unique-index violations become the duplicate-key error the HTTP layer maps
// to a conflict.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

// mapFindError converts a missing-document failure into the given not-found
// sentinel.
func mapFindError(err, notFound error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return err
}
