package accounts

import (
	"errors"
	"strings"
	"time"
)

// Role identifies which part of the API an account may use.
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// ErrUnknownRole is returned when a role string does not match any known role.
var ErrUnknownRole = errors.New("accounts: unknown role")

// ParseRole normalizes a role string from a token or request body.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, nil
	case RoleDoctor:
		return RoleDoctor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", ErrUnknownRole
}

// Account is the identity payload shared by patients, doctors, and admins.
// Role-specific records embed it instead of inheriting from a base entity.
type Account struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
