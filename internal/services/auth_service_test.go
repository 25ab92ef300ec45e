package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spur-go/internal/auth"
	"spur-go/internal/config"
)

func newAuthFixture() (*fakeUserRepo, AuthService, config.AuthConfig) {
	cfg := config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: time.Hour, JWTIssuer: "spur-test"}
	users := newFakeUserRepo()
	return users, NewAuthService(users, cfg), cfg
}

func TestRegister(t *testing.T) {
	users, svc, _ := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "Alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "s3cret-pass", users.users[user.ID].PasswordHash)
	assert.True(t, auth.CheckPasswordHash("s3cret-pass", users.users[user.ID].PasswordHash))

	_, err = svc.Register(ctx, "alice", "Other", "other@example.com", "pw123456")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = svc.Register(ctx, "alice2", "Other", "alice@example.com", "pw123456")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLogin(t *testing.T) {
	_, svc, cfg := newAuthFixture()
	ctx := context.Background()
	registered, err := svc.Register(ctx, "alice", "Alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	for _, login := range []string{"alice", "alice@example.com"} {
		token, user, err := svc.Login(ctx, login, "s3cret-pass")
		require.NoError(t, err, login)
		assert.Equal(t, registered.ID, user.ID)

		claims, err := auth.ValidateToken(ctx, token, cfg.JWTSecretKey, nil)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
	}

	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserProfile(t *testing.T) {
	users := newFakeUserRepo()
	alice := users.add("alice")
	users.users[alice.ID].PasswordHash = "hash"
	svc := NewUserService(users)

	profile, err := svc.GetUserProfile(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Empty(t, profile.PasswordHash)

	_, err = svc.GetUserProfile(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
