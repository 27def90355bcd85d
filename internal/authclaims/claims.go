package authclaims

import (
	"context"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medisched/medisched/internal/accounts"
)

// Claims is the token payload carried through request contexts. Operations
// receive it explicitly; there is no ambient security context.
type Claims struct {
	Role accounts.Role `json:"role"`
	Name string        `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the account identifier carried in the token.
func (c *Claims) SubjectID() string {
	return c.Subject
}

// OwnsPatient reports whether the claims belong to the given patient id.
func (c *Claims) OwnsPatient(patientID int64) bool {
	return c.Role == accounts.RolePatient && c.Subject == strconv.FormatInt(patientID, 10)
}

// OwnsDoctor reports whether the claims belong to the given doctor id.
func (c *Claims) OwnsDoctor(doctorID string) bool {
	return c.Role == accounts.RoleDoctor && c.Subject == doctorID
}

// IsAdmin reports whether the claims carry the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == accounts.RoleAdmin
}

type contextKey string

const claimsKey contextKey = "authClaims"

// WithClaims attaches verified claims to a request context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the verified claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}
