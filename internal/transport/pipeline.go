package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/yndnr/ecoply-go/internal/core/domain"
)

// RequestInterceptor may rewrite an outgoing request or reject it.
// A rejected request is never sent.
type RequestInterceptor func(req *http.Request) (*http.Request, error)

// ResponseInterceptor observes a settled request. It receives the request
// as sent and either the response or the transport error, and returns
// what the next interceptor (and finally the caller) sees.
type ResponseInterceptor func(req *http.Request, resp *http.Response, err error) (*http.Response, error)

// Pipeline is an http.RoundTripper with interceptor chains.
type Pipeline struct {
	next      http.RoundTripper
	requests  []RequestInterceptor
	responses []ResponseInterceptor
}

// NewPipeline creates a pipeline dispatching through next.
// A nil next uses http.DefaultTransport.
func NewPipeline(next http.RoundTripper) *Pipeline {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Pipeline{next: next}
}

// UseRequest appends request interceptors. They run in insertion order.
func (p *Pipeline) UseRequest(fns ...RequestInterceptor) *Pipeline {
	p.requests = append(p.requests, fns...)
	return p
}

// UseResponse appends response interceptors. They run in insertion order.
func (p *Pipeline) UseResponse(fns ...ResponseInterceptor) *Pipeline {
	p.responses = append(p.responses, fns...)
	return p
}

// RoundTrip implements http.RoundTripper.
func (p *Pipeline) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrip must not modify the caller's request.
	out := req.Clone(withStart(req.Context(), time.Now()))

	var err error
	for _, fn := range p.requests {
		out, err = fn(out)
		if err != nil {
			break
		}
	}

	var resp *http.Response
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		if out == nil {
			out = req
		}
		err = domain.ErrRequestRejected.WithDetails(err.Error()).WithCause(err)
	} else {
		resp, err = p.next.RoundTrip(out)
	}

	for _, fn := range p.responses {
		resp, err = fn(out, resp, err)
	}
	return resp, err
}

type startKey struct{}

func withStart(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startKey{}, t)
}

// StartTime returns when the pipeline began processing req.
func StartTime(req *http.Request) (time.Time, bool) {
	t, ok := req.Context().Value(startKey{}).(time.Time)
	return t, ok
}
