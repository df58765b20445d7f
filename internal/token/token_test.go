package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modahub/storefront-api/internal/domain/user"
)

func testUser() *user.User {
	return &user.User{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: user.RoleAdmin}
}

func TestIssueAndParse(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)

	raw, err := m.Issue(testUser())
	require.NoError(t, err)

	actor, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", actor.UserID)
	assert.Equal(t, user.RoleAdmin, actor.Role)
	assert.True(t, actor.IsAdmin())
}

func TestParse_WrongSecret(t *testing.T) {
	raw, err := NewManager([]byte("secret-a"), time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewManager([]byte("secret-b"), time.Hour).Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expired(t *testing.T) {
	raw, err := NewManager([]byte("test-secret"), -time.Minute).Issue(testUser())
	require.NoError(t, err)

	_, err = NewManager([]byte("test-secret"), time.Hour).Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
