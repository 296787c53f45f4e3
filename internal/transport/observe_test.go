package transport

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
	"github.com/yndnr/ecoply-go/internal/telemetry/metric"
)

func TestRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.test/", nil)
	out, err := RequestID()(req)
	if err != nil {
		t.Fatal(err)
	}

	id := out.Header.Get(RequestIDHeader)
	if _, err := ulid.Parse(id); err != nil {
		t.Errorf("%s = %q is not a ULID: %v", RequestIDHeader, id, err)
	}
	if got := logger.RequestID(out.Context()); got != id {
		t.Errorf("context request id = %q, want %q", got, id)
	}
}

func TestRequestID_KeepsExisting(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.test/", nil)
	req.Header.Set(RequestIDHeader, "fixed")
	out, _ := RequestID()(req)
	if got := out.Header.Get(RequestIDHeader); got != "fixed" {
		t.Errorf("%s = %q, want fixed", RequestIDHeader, got)
	}
}

func TestThrottle_Disabled(t *testing.T) {
	fn := Throttle(0, 0)
	for i := 0; i < 100; i++ {
		if _, err := fn(httptest.NewRequest(http.MethodGet, "http://api.test/", nil)); err != nil {
			t.Fatalf("Throttle(0) error = %v", err)
		}
	}
}

func TestThrottle_RespectsContext(t *testing.T) {
	fn := Throttle(0.001, 1)

	// The first request consumes the burst.
	if _, err := fn(httptest.NewRequest(http.MethodGet, "http://api.test/", nil)); err != nil {
		t.Fatalf("first request error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "http://api.test/", nil).WithContext(ctx)
	if _, err := fn(req); err == nil {
		t.Error("second request was not throttled")
	}
}

func TestLogging_MasksAuthorization(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Level: "debug", Format: "text", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	defer logger.SetLevel("warn")

	req := httptest.NewRequest(http.MethodGet, "http://api.test/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer supersecrettoken")
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusOK)

	Logging(l)(req, rec.Result(), nil)

	out := buf.String()
	if strings.Contains(out, "supersecrettoken") {
		t.Errorf("log leaked the token: %s", out)
	}
	if !strings.Contains(out, "status=200") {
		t.Errorf("log missing status: %s", out)
	}
}

func TestMetrics(t *testing.T) {
	reg := metric.NewRegistry()
	fn := Metrics(reg)

	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusCreated)
	fn(httptest.NewRequest(http.MethodPost, "http://api.test/", nil), rec.Result(), nil)
	fn(httptest.NewRequest(http.MethodGet, "http://api.test/", nil), nil, context.DeadlineExceeded)

	if got := testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("POST", "201")); got != 1 {
		t.Errorf("POST 201 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("GET", "error")); got != 1 {
		t.Errorf("GET error = %v, want 1", got)
	}
}
