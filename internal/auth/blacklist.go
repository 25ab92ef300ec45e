package auth

import (
	"context"
	"time"
)

// TokenBlacklist stores the IDs (jti) of tokens revoked before they expire.
type TokenBlacklist interface {
	// Add revokes jti until tokenExpiry; after that the token is rejected
	// for being expired anyway and the entry may be dropped.
	Add(ctx context.Context, jti string, tokenExpiry time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}
