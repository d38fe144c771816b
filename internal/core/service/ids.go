package service

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/core/domain"
)

// parseObjectID converts a path-parameter identifier, surfacing a malformed
// one as the domain-level invalid-identifier error.
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}
