package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of actor roles. Route access is always checked
// against explicit members of this set, never free-form strings.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// User models an account. PasswordHash and the reset-token fields never leave
// the process in a response body.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	Photo        string             `json:"photo,omitempty" bson:"photo,omitempty"`
	Role         Role               `json:"role" bson:"role"`
	PasswordHash string             `json:"-" bson:"password"`

	PasswordChangedAt    time.Time `json:"-" bson:"passwordChangedAt,omitempty"`
	PasswordResetToken   string    `json:"-" bson:"passwordResetToken,omitempty"`
	PasswordResetExpires time.Time `json:"-" bson:"passwordResetExpires,omitempty"`

	Active bool `json:"-" bson:"active"`
}

// PasswordChangedAfter reports whether the password was altered after a token
// issued at the given unix timestamp. Changed-at stamps carry a one second
// backdate, so a token minted in the same instant as the change stays valid.
func (u *User) PasswordChangedAfter(issuedAtUnix int64) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAtUnix
}
