package transport

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
	"github.com/yndnr/ecoply-go/internal/telemetry/metric"
)

func respond(t *testing.T, fn ResponseInterceptor, path string, status int) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "http://api.test"+path, nil)
	rec := httptest.NewRecorder()
	rec.WriteHeader(status)
	orig := rec.Result()

	got, err := fn(req, orig, nil)
	if err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if got != orig {
		t.Error("interceptor replaced the response")
	}
	return got
}

func TestUnauthorizedResponder_ForcesLogout(t *testing.T) {
	sess := newFakeSession("tok")
	nav := &fakeNavigator{}
	reg := metric.NewRegistry()

	fn := UnauthorizedResponder(sess, nav,
		WithUnauthorizedLogger(logger.Discard()),
		WithUnauthorizedMetrics(reg),
	)
	resp := respond(t, fn, "/api/v1/me", http.StatusUnauthorized)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	if _, ok, _ := sess.store.Get(); ok {
		t.Error("token survived a 401")
	}
	if got := nav.calls(); len(got) != 1 || got[0] != "login" {
		t.Errorf("redirects = %v, want [login]", got)
	}
	if got := testutil.ToFloat64(reg.ForcedLogouts); got != 1 {
		t.Errorf("forced logouts = %v, want 1", got)
	}
}

func TestUnauthorizedResponder_PassThrough(t *testing.T) {
	statuses := []int{http.StatusOK, http.StatusNoContent, http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			sess := newFakeSession("tok")
			nav := &fakeNavigator{}
			respond(t, UnauthorizedResponder(sess, nav, WithUnauthorizedLogger(logger.Discard())), "/api/v1/me", status)

			if sess.expires.Load() != 0 {
				t.Error("Expire() called for non-401 status")
			}
			if len(nav.calls()) != 0 {
				t.Error("redirect issued for non-401 status")
			}
		})
	}
}

func TestUnauthorizedResponder_ExemptPaths(t *testing.T) {
	for _, path := range DefaultExemptPaths {
		t.Run(path, func(t *testing.T) {
			sess := newFakeSession("tok")
			nav := &fakeNavigator{}
			respond(t, UnauthorizedResponder(sess, nav, WithUnauthorizedLogger(logger.Discard())), path, http.StatusUnauthorized)

			if _, ok, _ := sess.store.Get(); !ok {
				t.Error("token cleared by a 401 from an exempt path")
			}
			if len(nav.calls()) != 0 {
				t.Error("redirect issued for an exempt path")
			}
		})
	}
}

func TestUnauthorizedResponder_BasePath(t *testing.T) {
	tests := []struct {
		name       string
		base       string
		path       string
		wantExpire bool
	}{
		{"login below base", "/ecoply", "/ecoply/api/v1/auth/login", false},
		{"signup below base with slash", "/ecoply/", "/ecoply/api/v1/auth/signup", false},
		{"me below base", "/ecoply", "/ecoply/api/v1/me", true},
		{"login outside base", "/ecoply", "/api/v1/auth/login", true},
		{"root base", "", "/api/v1/auth/login", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newFakeSession("tok")
			nav := &fakeNavigator{}
			fn := UnauthorizedResponder(sess, nav,
				WithBasePath(tt.base),
				WithUnauthorizedLogger(logger.Discard()),
			)
			respond(t, fn, tt.path, http.StatusUnauthorized)

			_, ok, _ := sess.store.Get()
			if expired := !ok; expired != tt.wantExpire {
				t.Errorf("expired = %v, want %v", expired, tt.wantExpire)
			}
			if redirected := len(nav.calls()) > 0; redirected != tt.wantExpire {
				t.Errorf("redirected = %v, want %v", redirected, tt.wantExpire)
			}
		})
	}
}

func TestUnauthorizedResponder_CustomExempt(t *testing.T) {
	sess := newFakeSession("tok")
	fn := UnauthorizedResponder(sess, nil,
		WithExemptPaths("/api/v1/ccee/agents"),
		WithLoginRoute("signin"),
		WithUnauthorizedLogger(logger.Discard()),
	)

	respond(t, fn, "/api/v1/auth/login", http.StatusUnauthorized)
	if sess.expires.Load() != 1 {
		t.Errorf("Expire() calls = %d, want 1 once the default list is replaced", sess.expires.Load())
	}
}

func TestUnauthorizedResponder_TransportError(t *testing.T) {
	sess := newFakeSession("tok")
	fn := UnauthorizedResponder(sess, &fakeNavigator{}, WithUnauthorizedLogger(logger.Discard()))

	netErr := errors.New("connection refused")
	req := httptest.NewRequest(http.MethodGet, "http://api.test/api/v1/me", nil)
	resp, err := fn(req, nil, netErr)
	if resp != nil || !errors.Is(err, netErr) {
		t.Errorf("interceptor = (%v, %v), want (nil, %v)", resp, err, netErr)
	}
	if sess.expires.Load() != 0 {
		t.Error("Expire() called on transport error")
	}
}

func TestUnauthorizedResponder_ExpireFailureStillRedirects(t *testing.T) {
	sess := newFakeSession("tok")
	sess.err = errors.New("read-only fs")
	nav := &fakeNavigator{}

	respond(t, UnauthorizedResponder(sess, nav, WithUnauthorizedLogger(logger.Discard())), "/api/v1/me", http.StatusUnauthorized)
	if len(nav.calls()) != 1 {
		t.Errorf("redirects = %v, want one", nav.calls())
	}
}

func TestUnauthorizedResponder_Concurrent(t *testing.T) {
	sess := newFakeSession("tok")
	nav := &fakeNavigator{}
	fn := UnauthorizedResponder(sess, nav, WithUnauthorizedLogger(logger.Discard()))

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "http://api.test/api/v1/offers", nil)
			rec := httptest.NewRecorder()
			rec.WriteHeader(http.StatusUnauthorized)
			fn(req, rec.Result(), nil)
		}()
	}
	wg.Wait()

	if _, ok, _ := sess.store.Get(); ok {
		t.Error("token survived concurrent 401s")
	}
	if got := sess.expires.Load(); got != n {
		t.Errorf("Expire() calls = %d, want %d", got, n)
	}
}
