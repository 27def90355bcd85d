package auth

import "errors"

var (
	// ErrInvalidToken is returned for missing, expired, or tampered tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when a password fails the minimum policy.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)
