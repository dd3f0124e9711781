package auth

import (
	"context"
	"time"
)

// IdentityClaim is the result of verifying a caller's ID token. It lives for
// one request and is never persisted.
type IdentityClaim struct {
	Subject        string    `json:"subject"`
	Email          string    `json:"email,omitempty"`
	Name           string    `json:"name,omitempty"`
	IssuerVerified bool      `json:"issuer_verified"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type contextKey string

const claimContextKey contextKey = "nutrigate_claim"

func ContextWithClaim(ctx context.Context, claim *IdentityClaim) context.Context {
	return context.WithValue(ctx, claimContextKey, claim)
}

func ClaimFromContext(ctx context.Context) (*IdentityClaim, bool) {
	claim, ok := ctx.Value(claimContextKey).(*IdentityClaim)
	return claim, ok
}
