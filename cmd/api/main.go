package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medisched/medisched/cmd/mainconfig"
	"github.com/medisched/medisched/internal/accounts"
	"github.com/medisched/medisched/internal/admin"
	"github.com/medisched/medisched/internal/api/router"
	"github.com/medisched/medisched/internal/appointments"
	"github.com/medisched/medisched/internal/auth"
	appconfig "github.com/medisched/medisched/internal/config"
	"github.com/medisched/medisched/internal/doctors"
	"github.com/medisched/medisched/internal/medicalrecords"
	"github.com/medisched/medisched/internal/notify"
	appmetrics "github.com/medisched/medisched/internal/observability/metrics"
	"github.com/medisched/medisched/internal/patients"
	"github.com/medisched/medisched/internal/payments"
	"github.com/medisched/medisched/internal/reviews"
	"github.com/medisched/medisched/internal/staff"
	"github.com/medisched/medisched/internal/storage"
	"github.com/medisched/medisched/pkg/logging"
)

func main() {
	// Load .env in development; environment variables win in production.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medisched API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Optional Redis-backed slot cache. Availability falls back to
	// recomputing from the database when no cache is configured.
	var slotCache *appointments.SlotCache
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		slotCache = appointments.NewSlotCache(redis.NewClient(opts), cfg.SlotCacheTTL, nil)
		logger.Info("slot cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.SlotCacheTTL)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	var uploads *storage.UploadStore
	if cfg.UploadsBucket != "" {
		uploads = storage.NewUploadStore(s3.NewFromConfig(awsCfg), cfg.UploadsBucket, logger)
		logger.Info("uploads enabled", "bucket", cfg.UploadsBucket)
	}

	emailSender := setupEmailSender(cfg, awsCfg, logger)
	if emailSender == nil {
		logger.Info("email delivery disabled, notifications are stored only")
	}

	// Initialize repositories
	doctorRepo := doctors.NewPostgresRepository(pool)
	patientRepo := patients.NewPostgresRepository(pool)
	adminRepo := accounts.NewAdminRepository(pool)
	appointmentRepo := appointments.NewPostgresRepository(pool)
	recordRepo := medicalrecords.NewPostgresRepository(pool)
	paymentRepo := payments.NewPostgresRepository(pool)
	reviewRepo := reviews.NewPostgresRepository(pool)
	staffRepo := staff.NewPostgresRepository(pool)
	notifyStore := notify.NewPostgresStore(pool)

	// Initialize services
	feeCents := int64(cfg.ConsultationFeeCents)
	completionWriter := payments.NewCompletionWriter(paymentRepo, feeCents, cfg.FeeCurrency)
	financeService := payments.NewFinanceService(paymentRepo, feeCents, cfg.FeeCurrency, logger)
	notifyService := notify.NewService(notifyStore, emailSender, logger)

	metricsHandler, bookingMetrics := setupBookingMetrics()
	appointmentService := appointments.NewService(
		appointmentRepo,
		doctorRepo,
		patientRepo,
		completionWriter,
		recordRepo,
		notifyService,
		slotCache,
		appointments.Config{
			BookingFeeEnabled: cfg.BookingFeeEnabled,
			FeeCents:          feeCents,
			FeeCurrency:       cfg.FeeCurrency,
		},
		logger,
	).WithMetrics(bookingMetrics)

	tokenIssuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(patientRepo, doctorRepo, adminRepo, tokenIssuer)

	// Initialize handlers
	authHandler := auth.NewHandler(authService, patientRepo, doctorRepo, adminRepo, logger)
	doctorHandler := doctors.NewHandler(doctorRepo, logger)
	patientHandler := patients.NewHandler(patientRepo, logger)
	appointmentHandler := appointments.NewHandler(appointmentService, appointmentRepo, logger)
	adminHandler := admin.NewHandler(doctorRepo, patientRepo, uploads, logger)
	staffHandler := staff.NewHandler(staffRepo, logger)
	recordHandler := medicalrecords.NewHandler(recordRepo, logger)
	reviewHandler := reviews.NewHandler(reviewRepo, logger)
	notifyHandler := notify.NewHandler(notifyStore, logger)
	financeHandler := payments.NewHandler(paymentRepo, financeService, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,

		Auth:           authHandler,
		Doctors:        doctorHandler,
		Patients:       patientHandler,
		Appointments:   appointmentHandler,
		Admin:          adminHandler,
		Staff:          staffHandler,
		MedicalRecords: recordHandler,
		Reviews:        reviewHandler,
		Notifications:  notifyHandler,
		Finance:        financeHandler,

		MetricsHandler: metricsHandler,

		LoginRatePerSecond: cfg.RateLimitPerSecond,
		LoginRateBurst:     cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupBookingMetrics registers the appointment metrics on a private registry
// and returns the scrape handler for it.
func setupBookingMetrics() (http.Handler, *appmetrics.AppointmentMetrics) {
	registry := prometheus.NewRegistry()
	m := appmetrics.NewAppointmentMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), m
}

// setupEmailSender picks the email provider from configuration. A nil return
// means notifications are persisted without email delivery.
func setupEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s
		}
	case "ses":
		if s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s
		}
	case "stub":
		return notify.NewStubEmailSender(logger)
	}
	return nil
}
