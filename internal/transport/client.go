package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/infra/tlsroots"
)

// maxErrorBody bounds how much of a failed response is read.
const maxErrorBody = 1 << 20

// DefaultTimeout is the per-request timeout when none is configured.
const DefaultTimeout = 30 * time.Second

// Config configures the API client.
type Config struct {
	// BaseURL is the API origin, e.g. https://api.ecoply.com.br.
	// A scheme-less value is treated as http.
	BaseURL string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// CAFile lists PEM bundles, separated like PATH, trusted on top of
	// the system roots.
	CAFile string
	// UserAgent overrides the User-Agent header.
	UserAgent string
}

// Client performs JSON requests against the marketplace API.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewBaseTransport returns the network transport the pipeline dispatches
// through, trusting cfg.CAFile in addition to the system roots.
func NewBaseTransport(cfg Config) (http.RoundTripper, error) {
	tlsConfig, err := tlsroots.ClientConfig(cfg.CAFile)
	if err != nil {
		return nil, err
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	if tlsConfig != nil {
		t.TLSClientConfig = tlsConfig
	}
	return t, nil
}

// NewClient creates a client sending through rt, usually a *Pipeline.
func NewClient(cfg Config, rt http.RoundTripper) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "ecoply-cli"
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: ua,
		client: &http.Client{
			Transport: rt,
			Timeout:   timeout,
		},
	}
}

// BaseURL returns the base URL of the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BasePath returns the path component of the base URL without a trailing
// slash, or "" when the API is served from the root.
func (c *Client) BasePath() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}

// Get performs a GET request and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do sends one request.
//
// A status >= 400 returns *APIError. A failure before any response
// returns ErrTransportFailure, or the interceptor's error when the
// pipeline rejected the request. out may be nil to discard the body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return domain.ErrInvalidArgument.WithDetails("marshal body").WithCause(err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return domain.ErrInvalidArgument.WithDetails("create request").WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return de
		}
		return domain.ErrTransportFailure.WithDetails(method + " " + path).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return newAPIError(resp, path)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.ErrMalformedResponse.WithDetails(method + " " + path).WithCause(err)
	}
	return nil
}

// APIError is a response with status >= 400.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Path       string
	Info       map[string]any
}

func newAPIError(resp *http.Response, path string) *APIError {
	e := &APIError{StatusCode: resp.StatusCode, Path: path}

	var body struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Info    map[string]any `json:"info"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err == nil {
		e.Code = body.Code
		e.Message = body.Message
		e.Info = body.Info
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api %s: %d [%s] %s", e.Path, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api %s: %d %s", e.Path, e.StatusCode, e.Message)
}

// Is classifies the status: 401 matches ErrSessionExpired, 5xx matches
// ErrTransportFailure.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return errors.Is(domain.ErrSessionExpired, target)
	case e.StatusCode >= 500:
		return errors.Is(domain.ErrTransportFailure, target)
	}
	return false
}

// Envelope is the {"data": ...} wrapper of single-object responses.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// Page is a paginated list response.
type Page[T any] struct {
	Page     int  `json:"page" yaml:"page"`
	PageSize int  `json:"page_size" yaml:"page_size"`
	HasNext  bool `json:"has_next" yaml:"has_next"`
	HasPrev  bool `json:"has_prev" yaml:"has_prev"`
	Data     []T  `json:"data" yaml:"data"`
}
