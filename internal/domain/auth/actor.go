// Package auth holds the identity context passed into every domain operation.
// An Actor is resolved exactly once per request from the bearer token; domain
// code never reads ambient authentication state.
package auth

import (
	"github.com/go-faster/errors"

	"github.com/modahub/storefront-api/internal/domain/user"
)

// ErrForbidden is returned when an actor lacks the capability required by an
// operation.
var ErrForbidden = errors.New("forbidden")

// Actor identifies the caller of a domain operation.
type Actor struct {
	UserID string
	Role   user.Role
}

// IsAdmin reports whether the actor holds the administrative capability.
func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}
