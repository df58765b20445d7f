package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Role is the access level assigned to a user account. Role assignment is
// exclusively store-driven data: there are no code-level identity overrides.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Sentinel errors for account lookup and registration.
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// User represents a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role

	// ResetOTP and OTPExpiresAt track an in-flight password reset. Both are
	// zero when no reset is pending.
	ResetOTP     string
	OTPExpiresAt time.Time

	CreatedAt time.Time
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	// Create stores a new user. It returns ErrEmailTaken when another account
	// already owns the email address.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// SetResetOTP stores a pending password-reset code and its expiry.
	SetResetOTP(ctx context.Context, id, otp string, expiresAt time.Time) error
	// UpdatePassword replaces the password hash and clears any pending OTP.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
