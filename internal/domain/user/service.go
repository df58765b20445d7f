package user

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors for authentication and password reset.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
)

// Mailer delivers transactional mail. A noop implementation is used in tests
// and when no SMTP server is configured.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

const otpTTL = 5 * time.Minute

// Service encapsulates account registration, login, and password reset.
type Service struct {
	users  Repository
	mailer Mailer

	now func() time.Time
}

// NewService creates a user Service.
func NewService(users Repository, mailer Mailer) *Service {
	return &Service{
		users:  users,
		mailer: mailer,
		now:    time.Now,
	}
}

// Signup registers a new account with the user role. The password is stored
// as a bcrypt hash. It returns ErrEmailTaken when the email is registered.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleUser,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login verifies the email and password pair. It returns
// ErrInvalidCredentials for both unknown emails and wrong passwords so the
// two cases are indistinguishable to a caller.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns the account with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ForgotPassword generates a six-digit OTP valid for five minutes, stores it
// on the account, and mails it to the user.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate OTP: %w", err)
	}

	if err := s.users.SetResetOTP(ctx, u.ID, otp, s.now().Add(otpTTL)); err != nil {
		return fmt.Errorf("store OTP: %w", err)
	}

	body := fmt.Sprintf("Your OTP for password reset is: %s\n\nThis OTP is valid for 5 minutes.", otp)
	if err := s.mailer.Send(ctx, u.Email, "Password Reset OTP", body); err != nil {
		return fmt.Errorf("send OTP mail: %w", err)
	}
	return nil
}

// ResetPassword sets a new password when the OTP matches the pending one and
// has not expired, clearing the OTP in the same update.
func (s *Service) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidOTP
		}
		return fmt.Errorf("get user: %w", err)
	}

	if u.ResetOTP == "" || u.ResetOTP != otp || s.now().After(u.OTPExpiresAt) {
		return ErrInvalidOTP
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// generateOTP returns a cryptographically random six-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
