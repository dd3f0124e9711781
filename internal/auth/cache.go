package auth

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisClaimPrefix = "nutrigate:idtoken:"

// ClaimStore is the slice of the redis client the cache needs. *redis.Client
// satisfies it.
type ClaimStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedVerifier wraps a Verifier with a Redis cache keyed by token digest,
// so repeated requests with the same ID token skip the JWKS round trip.
// Entries never outlive the token's own expiry.
type CachedVerifier struct {
	inner Verifier
	redis ClaimStore
	ttl   time.Duration
}

func NewCachedVerifier(inner Verifier, store ClaimStore, ttl time.Duration) *CachedVerifier {
	return &CachedVerifier{inner: inner, redis: store, ttl: ttl}
}

func (v *CachedVerifier) Verify(ctx context.Context, token string) (*IdentityClaim, error) {
	key := redisClaimPrefix + tokenDigest(token)

	if v.redis != nil {
		cached, err := v.redis.Get(ctx, key).Bytes()
		if err == nil {
			var claim IdentityClaim
			if err := json.Unmarshal(cached, &claim); err == nil && time.Now().Before(claim.ExpiresAt) {
				return &claim, nil
			}
		}
	}

	claim, err := v.inner.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	if v.redis != nil {
		ttl := v.ttl
		if until := time.Until(claim.ExpiresAt); until <= 0 {
			ttl = 0
		} else if until < ttl {
			ttl = until
		}
		if ttl > 0 {
			if data, err := json.Marshal(claim); err == nil {
				v.redis.Set(ctx, key, data, ttl)
			}
		}
	}

	return claim, nil
}

// tokenDigest hashes a token for use as a cache key. The raw token is never
// stored or logged.
func tokenDigest(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
