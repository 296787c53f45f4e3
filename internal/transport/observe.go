package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
	"github.com/yndnr/ecoply-go/internal/telemetry/metric"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestID stamps every request with a ULID, in the header and in the
// request context for logging. An ID already present is kept.
func RequestID() RequestInterceptor {
	return func(req *http.Request) (*http.Request, error) {
		id := req.Header.Get(RequestIDHeader)
		if id == "" {
			id = ulid.Make().String()
			req.Header.Set(RequestIDHeader, id)
		}
		return req.WithContext(logger.WithRequestID(req.Context(), id)), nil
	}
}

// Throttle waits on a token bucket before each request. rps <= 0
// disables throttling.
func Throttle(rps float64, burst int) RequestInterceptor {
	if rps <= 0 {
		return func(req *http.Request) (*http.Request, error) { return req, nil }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(req *http.Request) (*http.Request, error) {
		if err := limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
		return req, nil
	}
}

// Logging logs each settled request at debug level.
func Logging(l logger.Logger) ResponseInterceptor {
	l = l.With("component", "http")
	return func(req *http.Request, resp *http.Response, err error) (*http.Response, error) {
		args := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"headers", req.Header,
		}
		if start, ok := StartTime(req); ok {
			args = append(args, "duration_ms", time.Since(start).Milliseconds())
		}

		log := l.WithContext(req.Context())
		if err != nil {
			log.Debug("request failed", append(args, "error", err)...)
		} else {
			log.Debug("request completed", append(args, "status", resp.StatusCode)...)
		}
		return resp, err
	}
}

// Metrics records request counts and latency in r.
func Metrics(r *metric.Registry) ResponseInterceptor {
	return func(req *http.Request, resp *http.Response, err error) (*http.Response, error) {
		code := "error"
		if err == nil && resp != nil {
			code = strconv.Itoa(resp.StatusCode)
		}
		var d time.Duration
		if start, ok := StartTime(req); ok {
			d = time.Since(start)
		}
		r.ObserveRequest(req.Method, code, d)
		return resp, err
	}
}
