package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock implementations ---

type mockUserRepo struct {
	byID    map[string]*User
	byEmail map[string]*User
}

func newUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if _, taken := m.byEmail[u.Email]; taken {
		return ErrEmailTaken
	}
	clone := *u
	m.byID[u.ID] = &clone
	m.byEmail[u.Email] = &clone
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserRepo) SetResetOTP(_ context.Context, id, otp string, expiresAt time.Time) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.ResetOTP = otp
	u.OTPExpiresAt = expiresAt
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetOTP = ""
	u.OTPExpiresAt = time.Time{}
	return nil
}

type mockMailer struct {
	to      []string
	subject string
	body    string
	err     error
}

func (m *mockMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.subject = subject
	m.body = body
	return nil
}

// --- Tests ---

func TestSignup(t *testing.T) {
	repo := newUserRepo()
	svc := NewService(repo, &mockMailer{})

	u, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, RoleUser, u.Role)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")))
}

func TestSignup_EmailTaken(t *testing.T) {
	repo := newUserRepo()
	svc := NewService(repo, &mockMailer{})

	_, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), "Mallory", "alice@example.com", "other456")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	repo := newUserRepo()
	svc := NewService(repo, &mockMailer{})

	created, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	u, err := svc.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newUserRepo()
	svc := NewService(repo, &mockMailer{})

	_, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewService(newUserRepo(), &mockMailer{})

	// Unknown email and wrong password look identical to the caller.
	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestForgotPassword(t *testing.T) {
	repo := newUserRepo()
	mailer := &mockMailer{}
	svc := NewService(repo, mailer)

	u, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))

	stored := repo.byID[u.ID]
	require.Len(t, stored.ResetOTP, 6)
	assert.True(t, stored.OTPExpiresAt.After(time.Now()))
	assert.Equal(t, []string{"alice@example.com"}, mailer.to)
	assert.True(t, strings.Contains(mailer.body, stored.ResetOTP))
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	svc := NewService(newUserRepo(), &mockMailer{})

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	repo := newUserRepo()
	svc := NewService(repo, &mockMailer{})

	u, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
	otp := repo.byID[u.ID].ResetOTP

	require.NoError(t, svc.ResetPassword(context.Background(), "alice@example.com", otp, "newpass456"))

	// Old password no longer works, new one does, and the OTP is single-use.
	_, err = svc.Login(context.Background(), "alice@example.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "alice@example.com", "newpass456")
	require.NoError(t, err)
	err = svc.ResetPassword(context.Background(), "alice@example.com", otp, "again789")
	require.ErrorIs(t, err, ErrInvalidOTP)
}

func TestResetPassword_WrongOTP(t *testing.T) {
	repo := newUserRepo()
	svc := NewService(repo, &mockMailer{})

	_, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))

	err = svc.ResetPassword(context.Background(), "alice@example.com", "000000", "newpass456")
	require.ErrorIs(t, err, ErrInvalidOTP)
}

func TestResetPassword_ExpiredOTP(t *testing.T) {
	repo := newUserRepo()
	svc := NewService(repo, &mockMailer{})

	u, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
	otp := repo.byID[u.ID].ResetOTP

	svc.now = func() time.Time { return time.Now().Add(otpTTL + time.Minute) }

	err = svc.ResetPassword(context.Background(), "alice@example.com", otp, "newpass456")
	require.ErrorIs(t, err, ErrInvalidOTP)
}

func TestGenerateOTP_SixDigits(t *testing.T) {
	for i := 0; i < 32; i++ {
		otp, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)
	}
}
