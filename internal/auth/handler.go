package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medisched/medisched/internal/accounts"
	"github.com/medisched/medisched/internal/doctors"
	"github.com/medisched/medisched/internal/patients"
	"github.com/medisched/medisched/pkg/logging"
)

// PatientRegistry creates patient accounts.
type PatientRegistry interface {
	Create(ctx context.Context, p *patients.Patient) (*patients.Patient, error)
}

// DoctorRegistry creates doctor accounts.
type DoctorRegistry interface {
	Create(ctx context.Context, d *doctors.Doctor) (*doctors.Doctor, error)
}

// AdminRegistry creates admin accounts.
type AdminRegistry interface {
	Create(ctx context.Context, a *accounts.Admin) (*accounts.Admin, error)
}

// Handler exposes login and registration endpoints.
type Handler struct {
	service  *Service
	patients PatientRegistry
	doctors  DoctorRegistry
	admins   AdminRegistry
	logger   *logging.Logger
}

// NewHandler creates the auth handler.
func NewHandler(service *Service, p PatientRegistry, d DoctorRegistry, a AdminRegistry, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, patients: p, doctors: d, admins: a, logger: logger}
}

type loginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}
	role, err := accounts.ParseRole(req.Role)
	if err != nil {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	result, err := h.service.Login(r.Context(), role, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		h.logger.Error("login failed", "error", err, "role", role)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("login succeeded", "role", result.Role, "subject", result.Subject)
	writeJSON(w, http.StatusOK, result)
}

type registerPatientRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	BloodGroup  string `json:"bloodGroup"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
}

// RegisterPatient handles POST /auth/register/patient.
func (h *Handler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req registerPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		http.Error(w, "name and email are required", http.StatusBadRequest)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	patient := &patients.Patient{
		Account: accounts.Account{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         accounts.RolePatient,
		},
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		BloodGroup:  req.BloodGroup,
		Age:         req.Age,
		Gender:      req.Gender,
	}

	created, err := h.patients.Create(r.Context(), patient)
	if err != nil {
		if errors.Is(err, patients.ErrEmailTaken) {
			http.Error(w, "email is already registered", http.StatusConflict)
			return
		}
		h.logger.Error("patient registration failed", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("patient registered", "id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

type registerDoctorRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	Specialization       string `json:"specialization"`
	Qualification        string `json:"qualification"`
	Experience           string `json:"experience"`
	ClinicAddress        string `json:"clinicAddress"`
	ConsultationFeeCents int64  `json:"consultationFeeCents"`
}

// RegisterDoctor handles POST /auth/register/doctor. New doctors start in
// PENDING status until an admin approves them.
func (h *Handler) RegisterDoctor(w http.ResponseWriter, r *http.Request) {
	var req registerDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Specialization == "" {
		http.Error(w, "name, email and specialization are required", http.StatusBadRequest)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	doctor := &doctors.Doctor{
		Account: accounts.Account{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         accounts.RoleDoctor,
		},
		Specialization:       req.Specialization,
		Qualification:        req.Qualification,
		Experience:           req.Experience,
		ClinicAddress:        req.ClinicAddress,
		ConsultationFeeCents: req.ConsultationFeeCents,
		Status:               doctors.StatusPending,
	}

	created, err := h.doctors.Create(r.Context(), doctor)
	if err != nil {
		if errors.Is(err, doctors.ErrEmailTaken) {
			http.Error(w, "email is already registered", http.StatusConflict)
			return
		}
		h.logger.Error("doctor registration failed", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("doctor registered", "id", created.ID, "status", created.Status)
	writeJSON(w, http.StatusCreated, created)
}

type registerAdminRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Department    string `json:"department"`
	ContactNumber string `json:"contactNumber"`
}

// RegisterAdmin handles POST /auth/register/admin. The route is only mounted
// behind admin auth; bootstrap of the first admin happens via migration seed.
func (h *Handler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req registerAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		http.Error(w, "name and email are required", http.StatusBadRequest)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	admin := &accounts.Admin{
		Account: accounts.Account{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         accounts.RoleAdmin,
		},
		Department:    req.Department,
		ContactNumber: req.ContactNumber,
	}

	created, err := h.admins.Create(r.Context(), admin)
	if err != nil {
		if errors.Is(err, accounts.ErrEmailTaken) {
			http.Error(w, "email is already registered", http.StatusConflict)
			return
		}
		h.logger.Error("admin registration failed", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("admin registered", "id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
