package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medisched/medisched/internal/accounts"
	"github.com/medisched/medisched/internal/admin"
	"github.com/medisched/medisched/internal/appointments"
	"github.com/medisched/medisched/internal/auth"
	"github.com/medisched/medisched/internal/doctors"
	httpmiddleware "github.com/medisched/medisched/internal/http/middleware"
	"github.com/medisched/medisched/internal/medicalrecords"
	"github.com/medisched/medisched/internal/notify"
	"github.com/medisched/medisched/internal/patients"
	"github.com/medisched/medisched/internal/payments"
	"github.com/medisched/medisched/internal/reviews"
	"github.com/medisched/medisched/internal/staff"
	"github.com/medisched/medisched/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	JWTSecret          string
	CORSAllowedOrigins []string

	Auth           *auth.Handler
	Doctors        *doctors.Handler
	Patients       *patients.Handler
	Appointments   *appointments.Handler
	Admin          *admin.Handler
	Staff          *staff.Handler
	MedicalRecords *medicalrecords.Handler
	Reviews        *reviews.Handler
	Notifications  *notify.Handler
	Finance        *payments.Handler

	MetricsHandler http.Handler

	// LoginRatePerSecond throttles the public auth endpoints per client IP.
	// Zero disables throttling.
	LoginRatePerSecond float64
	LoginRateBurst     int
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Route("/auth", func(ar chi.Router) {
			if cfg.LoginRatePerSecond > 0 {
				ar.Use(httpmiddleware.RateLimit(cfg.LoginRatePerSecond, cfg.LoginRateBurst))
			}
			ar.Post("/login", cfg.Auth.Login)
			ar.Post("/register/patient", cfg.Auth.RegisterPatient)
			ar.Post("/register/doctor", cfg.Auth.RegisterDoctor)
			ar.Post("/register/admin", cfg.Auth.RegisterAdmin)
		})
	})

	// Authenticated endpoints
	r.Group(func(priv chi.Router) {
		priv.Use(httpmiddleware.RequireAuth(cfg.JWTSecret))

		priv.Route("/appointments", func(ar chi.Router) {
			ar.Post("/book", cfg.Appointments.Book)
			ar.With(httpmiddleware.RequireRoles(accounts.RoleAdmin)).Get("/", cfg.Appointments.List)
			ar.Get("/{id}", cfg.Appointments.Get)
			ar.Get("/patient/{patientID}", cfg.Appointments.ListByPatient)
			ar.Get("/doctor/{doctorID}", cfg.Appointments.ListByDoctor)
			ar.Get("/doctor/{doctorID}/availability", cfg.Appointments.Availability)
			ar.Put("/{id}/status", cfg.Appointments.UpdateStatus)
			ar.With(httpmiddleware.RequireRoles(accounts.RoleDoctor, accounts.RoleAdmin)).
				Post("/{id}/complete", cfg.Appointments.Complete)
			ar.Delete("/{id}", cfg.Appointments.Cancel)
		})

		priv.Route("/doctors/{id}", func(dr chi.Router) {
			dr.Get("/profile", cfg.Doctors.GetProfile)
			dr.Put("/profile", cfg.Doctors.UpdateProfile)
			dr.Get("/availability", cfg.Doctors.GetAvailability)
			dr.Put("/availability", cfg.Doctors.PutAvailability)
			dr.Get("/appointments", aliasParam("id", "doctorID", cfg.Appointments.ListByDoctor))
			dr.Get("/notifications", cfg.Notifications.ListForDoctor)
		})

		priv.Route("/patients/{id}", func(pr chi.Router) {
			pr.Get("/profile", cfg.Patients.GetProfile)
			pr.Put("/profile", cfg.Patients.UpdateProfile)
			pr.Get("/notifications", cfg.Notifications.ListForPatient)
		})

		priv.Put("/notifications/{id}/read", cfg.Notifications.MarkRead)

		priv.Route("/medical-records", func(mr chi.Router) {
			mr.Post("/", cfg.MedicalRecords.Create)
			mr.Get("/patient/{patientID}", cfg.MedicalRecords.ListByPatient)
			mr.Get("/doctor/{doctorID}", cfg.MedicalRecords.ListByDoctor)
		})

		priv.Route("/reviews", func(rr chi.Router) {
			rr.Post("/", cfg.Reviews.Create)
			rr.Get("/doctor/{doctorID}", cfg.Reviews.ListByDoctor)
			rr.Get("/patient/{patientID}", cfg.Reviews.ListByPatient)
		})

		// Admin-only surfaces
		priv.Group(func(adm chi.Router) {
			adm.Use(httpmiddleware.RequireRoles(accounts.RoleAdmin))

			adm.Route("/admin/doctors", func(dr chi.Router) {
				dr.Get("/", cfg.Admin.ListDoctors)
				dr.Post("/", cfg.Admin.CreateDoctor)
				dr.Get("/{id}", cfg.Admin.GetDoctor)
				dr.Put("/{id}", cfg.Admin.UpdateDoctor)
				dr.Delete("/{id}", cfg.Admin.DeleteDoctor)
				dr.Put("/{id}/status", cfg.Admin.UpdateDoctorStatus)
				dr.Post("/{id}/profile-picture", cfg.Admin.UploadDoctorProfilePicture)
				dr.Post("/{id}/credentials", cfg.Admin.UploadDoctorCredentials)
			})

			adm.Route("/admin/patients", func(pr chi.Router) {
				pr.Get("/", cfg.Admin.ListPatients)
				pr.Post("/", cfg.Admin.CreatePatient)
				pr.Get("/{id}", cfg.Admin.GetPatient)
				pr.Put("/{id}", cfg.Admin.UpdatePatient)
				pr.Delete("/{id}", cfg.Admin.DeletePatient)
				pr.Post("/{id}/profile-picture", cfg.Admin.UploadPatientProfilePicture)
				pr.Post("/{id}/documents", cfg.Admin.UploadPatientDocuments)
			})

			adm.Route("/staff", func(sr chi.Router) {
				sr.Get("/", cfg.Staff.List)
				sr.Post("/", cfg.Staff.Create)
				sr.Put("/{id}", cfg.Staff.Update)
				sr.Delete("/{id}", cfg.Staff.Delete)
			})

			adm.Route("/finance", func(fr chi.Router) {
				fr.Get("/payments", cfg.Finance.ListPayments)
				fr.Get("/summary", cfg.Finance.Summary)
				fr.Post("/reconcile-payments", cfg.Finance.Reconcile)
			})
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// aliasParam exposes one route parameter under a second name so handlers
// mounted on differently named subtrees keep a single lookup key.
func aliasParam(from, to string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			rctx.URLParams.Add(to, rctx.URLParam(from))
		}
		next(w, r)
	}
}
