package auth

import (
	"context"

	"github.com/medisched/medisched/internal/authclaims"
)

// Claims is the token payload carried through request contexts. Operations
// receive it explicitly; there is no ambient security context.
//
// The definition lives in the authclaims package so that packages auth
// depends on (doctors, patients) can read claims without an import cycle.
type Claims = authclaims.Claims

// WithClaims attaches verified claims to a request context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return authclaims.WithClaims(ctx, claims)
}

// ClaimsFromContext returns the verified claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	return authclaims.ClaimsFromContext(ctx)
}
