package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	appconfig "github.com/medisched/medisched/internal/config"
	"github.com/medisched/medisched/pkg/logging"
)

func TestSetupBookingMetricsExposesMetrics(t *testing.T) {
	handler, metrics := setupBookingMetrics()
	if handler == nil || metrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	metrics.ObserveBooking("created")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "medisched_appointments_bookings_total") {
		t.Fatalf("expected bookings counter to be exported")
	}
}

func TestSetupEmailSenderStubProvider(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{EmailProvider: "stub"}

	if sender := setupEmailSender(cfg, aws.Config{}, logger); sender == nil {
		t.Fatalf("expected stub sender")
	}
}

func TestSetupEmailSenderSendGridWithoutKey(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{EmailProvider: "sendgrid"}

	if sender := setupEmailSender(cfg, aws.Config{}, logger); sender != nil {
		t.Fatalf("expected nil sender without an API key")
	}
}

func TestSetupEmailSenderUnconfigured(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{}

	if sender := setupEmailSender(cfg, aws.Config{}, logger); sender != nil {
		t.Fatalf("expected nil sender when no provider is set")
	}
}
