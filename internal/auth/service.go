package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/medisched/medisched/internal/accounts"
	"github.com/medisched/medisched/internal/doctors"
	"github.com/medisched/medisched/internal/patients"
)

// PatientDirectory resolves patient credentials by email.
type PatientDirectory interface {
	GetByEmail(ctx context.Context, email string) (*patients.Patient, error)
}

// DoctorDirectory resolves doctor credentials by email.
type DoctorDirectory interface {
	GetByEmail(ctx context.Context, email string) (*doctors.Doctor, error)
}

// AdminDirectory resolves admin credentials by email.
type AdminDirectory interface {
	GetByEmail(ctx context.Context, email string) (*accounts.Admin, error)
}

// Service checks credentials against the role directories and issues tokens.
type Service struct {
	patients PatientDirectory
	doctors  DoctorDirectory
	admins   AdminDirectory
	issuer   *TokenIssuer
}

// NewService wires the credential directories to a token issuer.
func NewService(p PatientDirectory, d DoctorDirectory, a AdminDirectory, issuer *TokenIssuer) *Service {
	return &Service{patients: p, doctors: d, admins: a, issuer: issuer}
}

// LoginResult carries the signed token and the identity it represents.
type LoginResult struct {
	Token   string        `json:"token"`
	Role    accounts.Role `json:"role"`
	Subject string        `json:"subject"`
	Name    string        `json:"name"`
}

// Login validates email/password for the given role and returns a signed token.
// A missing account and a wrong password both map to ErrInvalidCredentials so
// the response does not reveal which one failed.
func (s *Service) Login(ctx context.Context, role accounts.Role, email, password string) (*LoginResult, error) {
	var (
		subject string
		name    string
		hash    string
	)
	switch role {
	case accounts.RolePatient:
		p, err := s.patients.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, patients.ErrNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("auth: lookup patient: %w", err)
		}
		subject = fmt.Sprintf("%d", p.ID)
		name = p.Name
		hash = p.PasswordHash
	case accounts.RoleDoctor:
		d, err := s.doctors.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, doctors.ErrNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("auth: lookup doctor: %w", err)
		}
		subject = d.ID
		name = d.Name
		hash = d.PasswordHash
	case accounts.RoleAdmin:
		a, err := s.admins.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, accounts.ErrAdminNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("auth: lookup admin: %w", err)
		}
		subject = fmt.Sprintf("%d", a.ID)
		name = a.Name
		hash = a.PasswordHash
	default:
		return nil, accounts.ErrUnknownRole
	}

	if !CheckPassword(hash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(role, subject, name)
	if err != nil {
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}
	return &LoginResult{Token: token, Role: role, Subject: subject, Name: name}, nil
}
