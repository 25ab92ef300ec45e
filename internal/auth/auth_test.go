package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spur-go/internal/config"
)

type memoryBlacklist struct {
	revoked map[string]time.Time
	err     error
}

func (b *memoryBlacklist) Add(_ context.Context, jti string, exp time.Time) error {
	if b.revoked == nil {
		b.revoked = map[string]time.Time{}
	}
	b.revoked[jti] = exp
	return nil
}

func (b *memoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if b.err != nil {
		return false, b.err
	}
	_, ok := b.revoked[jti]
	return ok, nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: time.Hour, JWTIssuer: "spur-test"}
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testAuthConfig()

	token, err := GenerateToken(42, "alice", cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(context.Background(), token, cfg.JWTSecretKey, &memoryBlacklist{})
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "spur-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateToken_WrongKey(t *testing.T) {
	token, err := GenerateToken(1, "alice", testAuthConfig())
	require.NoError(t, err)

	_, err = ValidateToken(context.Background(), token, "other-secret", nil)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTExpiry = -time.Minute
	token, err := GenerateToken(1, "alice", cfg)
	require.NoError(t, err)

	_, err = ValidateToken(context.Background(), token, cfg.JWTSecretKey, nil)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Revoked(t *testing.T) {
	cfg := testAuthConfig()
	blacklist := &memoryBlacklist{}
	token, err := GenerateToken(1, "alice", cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(context.Background(), token, cfg.JWTSecretKey, blacklist)
	require.NoError(t, err)
	require.NoError(t, blacklist.Add(context.Background(), claims.ID, claims.ExpiresAt.Time))

	_, err = ValidateToken(context.Background(), token, cfg.JWTSecretKey, blacklist)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestValidateToken_BlacklistUnavailable(t *testing.T) {
	cfg := testAuthConfig()
	token, err := GenerateToken(1, "alice", cfg)
	require.NoError(t, err)

	down := errors.New("redis down")
	_, err = ValidateToken(context.Background(), token, cfg.JWTSecretKey, &memoryBlacklist{err: down})
	assert.ErrorIs(t, err, down)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("battery staple", hash))
}
